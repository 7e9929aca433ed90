package hierarchy

import (
	"context"

	"github.com/dalemusser/civictrack/internal/domain/models"
)

// Guard decides whether the caller may change panchayats and wards under
// constituency c. It returns nil to allow, or the error to report.
type Guard func(c *models.Constituency) error

type guardKey struct{}

// WithGuard returns a context whose panchayat mutations are checked by g.
// Without a guard every mutation is allowed (seeding, internal callers).
func WithGuard(ctx context.Context, g Guard) context.Context {
	return context.WithValue(ctx, guardKey{}, g)
}

func guardFrom(ctx context.Context) Guard {
	g, _ := ctx.Value(guardKey{}).(Guard)
	return g
}

// mayChange applies the context's guard to c.
func mayChange(ctx context.Context, c *models.Constituency) error {
	if g := guardFrom(ctx); g != nil {
		return g(c)
	}
	return nil
}

// mayChangeIn applies the context's guard to the constituency with
// business id code, loading it only when a guard is present.
func (s *Service) mayChangeIn(ctx context.Context, code string) error {
	if guardFrom(ctx) == nil {
		return nil
	}
	c, err := s.ConstituencyByCode(ctx, code)
	if err != nil {
		return err
	}
	return mayChange(ctx, c)
}
