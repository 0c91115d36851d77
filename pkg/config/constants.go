package config

const (
	EnvPrefix = "ERANCHO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	PinStoragePlain  = "plain"
	PinStorageArgon2 = "argon2id"
)

const (
	EnvAppEnv       = "ERANCHO_APP_ENV"
	EnvPort         = "ERANCHO_APP_PORT"
	EnvLogLevel     = "ERANCHO_LOG_LEVEL"
	EnvLogWarnStack = "ERANCHO_LOG_WARN_STACK"
	EnvTimezone     = "ERANCHO_TIMEZONE"
	EnvCORSOrigins  = "ERANCHO_CORS_ALLOWED_ORIGINS"

	EnvDBDriver   = "ERANCHO_DB_DRIVER"
	EnvDBDSN      = "ERANCHO_DB_DSN"
	EnvDBHost     = "ERANCHO_DB_HOST"
	EnvDBPort     = "ERANCHO_DB_PORT"
	EnvDBUser     = "ERANCHO_DB_USER"
	EnvDBPassword = "ERANCHO_DB_PASSWORD"
	EnvDBName     = "ERANCHO_DB_NAME"
	EnvDBSSLMode  = "ERANCHO_DB_SSLMODE"

	EnvAutoMigrate = "ERANCHO_AUTO_MIGRATE"

	EnvRedisURL = "ERANCHO_REDIS_URL"

	EnvJWTSecret              = "ERANCHO_JWT_SECRET"
	EnvJWTIssuer              = "ERANCHO_JWT_ISSUER"
	EnvJWTExpMins             = "ERANCHO_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ERANCHO_REFRESH_TOKEN_TTL_MINUTES"

	EnvPinStorage = "ERANCHO_PIN_STORAGE"

	EnvWindowSelfOffset       = "ERANCHO_WINDOW_SELF_OFFSET"
	EnvWindowSelfCount        = "ERANCHO_WINDOW_SELF_COUNT"
	EnvWindowSupervisorOffset = "ERANCHO_WINDOW_SUPERVISOR_OFFSET"
	EnvWindowSupervisorCount  = "ERANCHO_WINDOW_SUPERVISOR_COUNT"
	EnvWindowReportOffset     = "ERANCHO_WINDOW_REPORT_OFFSET"
	EnvWindowReportCount      = "ERANCHO_WINDOW_REPORT_COUNT"

	EnvPreserveAttendance = "ERANCHO_RESERVATIONS_PRESERVE_ATTENDANCE"

	EnvSeedEnabled = "ERANCHO_SEED_ENABLED"
	EnvSeedPath    = "ERANCHO_SEED_PATH"

	EnvCronInterval = "ERANCHO_CRON_INTERVAL"
	EnvCronLockTTL  = "ERANCHO_CRON_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
