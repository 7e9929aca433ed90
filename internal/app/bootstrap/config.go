// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for civictrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_ttl, etc.
//   - Environment variables: CIVICTRACK_MONGO_URI, CIVICTRACK_TOKEN_TTL, etc.
//   - Command-line flags: --mongo_uri, --token_ttl, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "civictrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Auth tokens
	{Name: "token_ttl", Default: "72h", Desc: "Lifetime of a login token (e.g., 72h, 30m)"},
	{Name: "token_cleanup_interval", Default: "10m", Desc: "How often expired tokens are deleted"},
	{Name: "auth_rate_limit", Default: 20, Desc: "Register/login requests allowed per client IP per minute"},

	// Bulk endpoints
	{Name: "bulk_concurrency", Default: 1, Desc: "Items processed at once by bulk create endpoints (1 = sequential)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin account ensured on startup"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created admin account"},
	{Name: "admin_name", Default: "Administrator", Desc: "Display name for a newly created admin account"},

	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of allowed CORS origins"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// WAFFLE_* / CIVICTRACK_* environment variables and command-line flags
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CIVICTRACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenTTL:             appValues.Duration("token_ttl", 72*time.Hour),
		TokenCleanupInterval: appValues.Duration("token_cleanup_interval", 10*time.Minute),
		AuthRateLimit:        appValues.Int("auth_rate_limit"),

		BulkConcurrency: appValues.Int("bulk_concurrency"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. A non-nil error
// aborts startup before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must not be empty")
	}
	if appCfg.BulkConcurrency < 1 {
		return fmt.Errorf("bulk_concurrency must be at least 1, got %d", appCfg.BulkConcurrency)
	}
	if appCfg.AuthRateLimit < 1 {
		return fmt.Errorf("auth_rate_limit must be at least 1, got %d", appCfg.AuthRateLimit)
	}
	if appCfg.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if appCfg.AdminEmail != "" && len(appCfg.AdminPassword) < 8 {
		return errors.New("admin_password must be at least 8 characters when admin_email is set")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
