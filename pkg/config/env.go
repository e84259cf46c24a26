package config

const (
	EnvPrefix = "STOCKROOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOCKROOM_APP_ENV"
	EnvPort     = "STOCKROOM_APP_PORT"
	EnvLogLevel = "STOCKROOM_LOG_LEVEL"

	EnvDBDSN      = "STOCKROOM_DB_DSN"
	EnvDBHost     = "STOCKROOM_DB_HOST"
	EnvDBPort     = "STOCKROOM_DB_PORT"
	EnvDBUser     = "STOCKROOM_DB_USER"
	EnvDBPassword = "STOCKROOM_DB_PASSWORD"
	EnvDBName     = "STOCKROOM_DB_NAME"

	EnvRedisURL = "STOCKROOM_REDIS_URL"

	EnvJWTSecret  = "STOCKROOM_JWT_SECRET"
	EnvJWTIssuer  = "STOCKROOM_JWT_ISSUER"
	EnvJWTExpMins = "STOCKROOM_JWT_EXPIRATION_MINUTES"

	EnvOTPTTL            = "STOCKROOM_OTP_TTL"
	EnvOTPResendInterval = "STOCKROOM_OTP_RESEND_INTERVAL"

	EnvStockAllowNegative = "STOCKROOM_STOCK_ALLOW_NEGATIVE"
	EnvKafkaBrokers       = "STOCKROOM_KAFKA_BROKERS"
	EnvRequireAuth        = "STOCKROOM_REQUIRE_AUTH"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
