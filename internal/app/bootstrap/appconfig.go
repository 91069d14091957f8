// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS, body limits). AppConfig is everything specific to
// TakimHub: database connection details, session settings, file storage
// backends, and OAuth credentials.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: takimhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/files")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string // AWS region
	StorageS3Bucket string // S3 bucket name
	StorageS3Prefix string // Key prefix (e.g., "takimhub/")

	// Google OAuth configuration (sign-in is hidden when unset)
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks and absolute links
	BaseURL string // e.g., "https://takimhub.com" or "http://localhost:3000"
}
