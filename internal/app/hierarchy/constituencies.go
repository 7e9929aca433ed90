package hierarchy

import (
	"context"
	"errors"
	"fmt"

	constituencystore "github.com/dalemusser/civictrack/internal/app/store/constituencies"
	"github.com/dalemusser/civictrack/internal/app/system/apierr"
	"github.com/dalemusser/civictrack/internal/app/system/bulk"
	"github.com/dalemusser/civictrack/internal/app/system/inputval"
	"github.com/dalemusser/civictrack/internal/app/system/normalize"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateConstituency validates in, checks its MLA and panchayat references,
// and inserts it.
func (s *Service) CreateConstituency(ctx context.Context, in ConstituencyInput) (models.Constituency, error) {
	in = in.normalized()
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Constituency{}, err
	}
	return s.createConstituency(ctx, in)
}

func (s *Service) createConstituency(ctx context.Context, in ConstituencyInput) (models.Constituency, error) {
	mlaID, err := s.checkMLA(ctx, in.MLAID)
	if err != nil {
		return models.Constituency{}, err
	}

	code := normalize.ID(in.ConstituencyID)
	if err := s.checkConstituencyCodeFree(ctx, code, primitive.NilObjectID); err != nil {
		return models.Constituency{}, err
	}

	refs, err := s.checkPanchayatRefs(ctx, in.Panchayats)
	if err != nil {
		return models.Constituency{}, err
	}

	c, err := s.constituencies.Create(ctx, models.Constituency{
		Name:           in.Name,
		ConstituencyID: code,
		MLAID:          mlaID,
		Panchayats:     refs,
	})
	if errors.Is(err, constituencystore.ErrDuplicateConstituencyID) {
		return models.Constituency{}, duplicateConstituency(code)
	}
	if err != nil {
		return models.Constituency{}, err
	}
	s.log.Info("constituency created",
		zap.String("constituency_id", c.ConstituencyID),
		zap.String("id", c.ID.Hex()))
	return c, nil
}

// BulkCreateConstituencies creates each constituency independently. A
// domain failure on one item is reported in Errors and the rest continue.
func (s *Service) BulkCreateConstituencies(ctx context.Context, in BulkConstituencyInput) (bulk.Result[models.Constituency], error) {
	in = in.normalized()
	if err := inputval.Validate(in).Err(); err != nil {
		return bulk.Result[models.Constituency]{}, err
	}
	return bulk.RunConcurrent(ctx, s.bulkConcurrency, in.Constituencies,
		func(c ConstituencyInput) string { return c.Name },
		s.createConstituency)
}

// GetConstituency loads a constituency by its ObjectID.
func (s *Service) GetConstituency(ctx context.Context, id string) (*models.Constituency, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.constituencies.GetByID(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, "Constituency not found")
	}
	return c, nil
}

// ConstituencyByCode loads a constituency by its business constituency_id.
func (s *Service) ConstituencyByCode(ctx context.Context, code string) (*models.Constituency, error) {
	c, err := s.constituencies.GetByCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "Constituency not found")
	}
	return c, nil
}

func (s *Service) ListConstituencies(ctx context.Context) ([]models.Constituency, error) {
	return s.constituencies.List(ctx)
}

// UpdateConstituency applies a partial update. constituency_id may not
// change while panchayats still reference the old value.
func (s *Service) UpdateConstituency(ctx context.Context, id string, in UpdateConstituencyInput) (*models.Constituency, error) {
	in = in.normalized()
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	cur, err := s.GetConstituency(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := constituencystore.Update{Name: in.Name}

	if in.ConstituencyID != nil {
		code := normalize.ID(*in.ConstituencyID)
		if code != cur.ConstituencyID {
			if err := s.checkConstituencyCodeFree(ctx, code, cur.ID); err != nil {
				return nil, err
			}
			n, err := s.panchayats.CountByConstituency(ctx, cur.ConstituencyID)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				return nil, apierr.InUse("constituency_id cannot change while panchayats reference this constituency")
			}
		}
		upd.ConstituencyID = &code
	}

	if in.MLAID != nil {
		mlaID, err := s.checkMLA(ctx, *in.MLAID)
		if err != nil {
			return nil, err
		}
		upd.MLAID = &mlaID
	}

	if in.Panchayats != nil {
		refs, err := s.checkPanchayatRefs(ctx, *in.Panchayats)
		if err != nil {
			return nil, err
		}
		upd.Panchayats = &refs
	}

	out, err := s.constituencies.Update(ctx, cur.ID, upd)
	switch {
	case errors.Is(err, constituencystore.ErrDuplicateConstituencyID):
		code := cur.ConstituencyID
		if upd.ConstituencyID != nil {
			code = *upd.ConstituencyID
		}
		return nil, duplicateConstituency(code)
	case err != nil:
		return nil, notFoundOr(err, "Constituency not found")
	}
	return out, nil
}

// DeleteConstituency removes a constituency that no panchayat references.
func (s *Service) DeleteConstituency(ctx context.Context, id string) error {
	cur, err := s.GetConstituency(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.panchayats.CountByConstituency(ctx, cur.ConstituencyID)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierr.InUse(fmt.Sprintf("Cannot delete constituency with %d panchayat(s); delete or move them first", n))
	}
	deleted, err := s.constituencies.Delete(ctx, cur.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apierr.NotFound("Constituency not found")
	}
	s.log.Info("constituency deleted", zap.String("constituency_id", cur.ConstituencyID))
	return nil
}

// checkMLA resolves raw to a user holding the mla role.
func (s *Service) checkMLA(ctx context.Context, raw string) (primitive.ObjectID, error) {
	oid, err := parseID("mla_id", raw)
	if err != nil {
		return primitive.NilObjectID, err
	}
	u, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return primitive.NilObjectID, notFoundOr(err, "MLA not found")
	}
	if !u.IsRole(models.RoleMLA) {
		return primitive.NilObjectID, apierr.Validation("mla_id", "mla_id must reference a user with role mla")
	}
	return oid, nil
}

func (s *Service) checkConstituencyCodeFree(ctx context.Context, code string, exclude primitive.ObjectID) error {
	taken, err := s.constituencies.CodeExists(ctx, code, exclude)
	if err != nil {
		return err
	}
	if taken {
		return duplicateConstituency(code)
	}
	return nil
}

// checkPanchayatRefs parses raw and verifies every id names a panchayat.
func (s *Service) checkPanchayatRefs(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	refs, err := parseIDs("panchayats", raw)
	if err != nil || len(refs) == 0 {
		return refs, err
	}
	n, err := s.panchayats.CountByIDs(ctx, refs)
	if err != nil {
		return nil, err
	}
	if n != int64(len(refs)) {
		return nil, apierr.NotFound("One or more panchayats not found")
	}
	return refs, nil
}

func duplicateConstituency(code string) error {
	return apierr.Conflict("constituency_id", fmt.Sprintf("constituency_id %q already exists", code))
}

// validateUpdate runs the field rules and rejects an update with no fields.
func validateUpdate(in any) error {
	if err := inputval.Validate(in).Err(); err != nil {
		return err
	}
	if !inputval.AnyProvided(in) {
		return apierr.Validation("", "at least one field must be provided")
	}
	return nil
}
