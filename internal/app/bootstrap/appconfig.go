// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from environment variables (CIVICTRACK_*), configuration
// files, or command-line flags and are loaded in LoadConfig. WAFFLE's
// CoreConfig covers ports, TLS, log level and the like; everything below
// is specific to civictrack.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Connections kept open when idle

	// Bearer tokens
	TokenTTL             time.Duration // Lifetime of a login token
	TokenCleanupInterval time.Duration // How often expired tokens are purged

	// Bulk endpoints process this many items at once (1 = in order)
	BulkConcurrency int

	// Admin account ensured at startup (skipped when AdminEmail is blank)
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Register/login attempts allowed per client IP per minute
	AuthRateLimit int

	// CORS
	CORSAllowedOrigins []string
}
