package constants

// Application Information
const (
	AppName    = "vidtube"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix = "vidtube:"
	CacheKeyVideo  = CacheKeyPrefix + "video:"
	CacheKeyOwner  = CacheKeyPrefix + "owner:"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
