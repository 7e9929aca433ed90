// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	tokenstore "github.com/dalemusser/civictrack/internal/app/store/tokens"
	userstore "github.com/dalemusser/civictrack/internal/app/store/users"
	"github.com/dalemusser/civictrack/internal/app/system/authutil"
	"github.com/dalemusser/civictrack/internal/app/system/ratelimit"
	"github.com/dalemusser/civictrack/internal/app/system/timeouts"
	"github.com/dalemusser/civictrack/internal/app/system/workers"
	"github.com/dalemusser/civictrack/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// background holds the long-running pieces started in Startup.
type background struct {
	tokenCleanup *workers.TokenCleanup
	limiter      *ratelimit.Limiter
	stopJanitor  context.CancelFunc
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}

	if appCfg.AdminEmail != "" {
		adminCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()
		if err := ensureAdmin(adminCtx, deps.MongoDatabase, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminName, logger); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}

	deps.bg.tokenCleanup = workers.NewTokenCleanup(tokenstore.New(deps.MongoDatabase), logger, appCfg.TokenCleanupInterval)
	deps.bg.tokenCleanup.Start()

	deps.bg.limiter = ratelimit.New(appCfg.AuthRateLimit, time.Minute)
	janitorCtx, stop := context.WithCancel(context.Background())
	deps.bg.stopJanitor = stop
	go deps.bg.limiter.Janitor(janitorCtx)

	return nil
}

// ensureAdmin makes sure an active admin with email exists. An existing
// account is promoted; its password is left alone.
func ensureAdmin(ctx context.Context, db *mongo.Database, email, password, name string, logger *zap.Logger) error {
	users := userstore.New(db)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsRole(models.RoleAdmin) {
			return nil
		}
		if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return err
		}
		logger.Info("promoted existing user to admin", zap.String("email", u.Email), zap.String("previous_role", u.Role))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	created, err := users.Create(ctx, models.User{
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// Another instance created it first.
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("created admin account", zap.String("email", created.Email))
	return nil
}
