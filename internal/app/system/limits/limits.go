// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBody caps single-object JSON request bodies.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxBulkBody caps bulk create bodies, which carry many records.
	MaxBulkBody = 8 << 20 // 8 MB
)
