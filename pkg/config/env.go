package config

const (
	// EnvPrefix is handed to envconfig; every field also carries an explicit
	// KABIPOS_* key so the variables can be set without the nested struct path.
	EnvPrefix = "KABIPOS"

	AppEnvDev  = "dev"
	AppEnvTest = "test"
	AppEnvProd = "prod"

	EnvAppEnv   = "KABIPOS_APP_ENV"
	EnvPort     = "KABIPOS_APP_PORT"
	EnvLogLevel = "KABIPOS_LOG_LEVEL"

	EnvDBDSN  = "KABIPOS_DB_DSN"
	EnvDBHost = "KABIPOS_DB_HOST"
	EnvDBUser = "KABIPOS_DB_USER"
	EnvDBName = "KABIPOS_DB_NAME"

	EnvRedisURL = "KABIPOS_REDIS_URL"

	EnvJWTSecret  = "KABIPOS_JWT_SECRET"
	EnvJWTIssuer  = "KABIPOS_JWT_ISSUER"
	EnvJWTExpMins = "KABIPOS_JWT_EXPIRATION_MINUTES"

	EnvBcryptCost = "KABIPOS_BCRYPT_COST"

	EnvCORSAllowedOrigins = "KABIPOS_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
