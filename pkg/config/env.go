package config

const EnvPrefix = "BARGEN"

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"
)

const (
	EnvAppEnv   = "BARGEN_APP_ENV"
	EnvPort     = "BARGEN_APP_PORT"
	EnvLogLevel = "BARGEN_LOG_LEVEL"

	EnvDBDSN  = "BARGEN_DB_DSN"
	EnvDBHost = "BARGEN_DB_HOST"
	EnvDBUser = "BARGEN_DB_USER"
	EnvDBName = "BARGEN_DB_NAME"

	EnvUseSQLite = "BARGEN_FEATURE_USE_SQLITE"

	EnvRedisURL = "BARGEN_REDIS_URL"

	EnvJWTSecret  = "BARGEN_JWT_SECRET"
	EnvJWTIssuer  = "BARGEN_JWT_ISSUER"
	EnvJWTExpMins = "BARGEN_JWT_EXPIRATION_MINUTES"

	EnvAdminPrincipals = "BARGEN_AUTH_ADMIN_PRINCIPALS"

	EnvDeliveryRatePerKm     = "BARGEN_DELIVERY_RATE_PER_KM"
	EnvDeliveryMinimumFee    = "BARGEN_DELIVERY_MINIMUM_FEE"
	EnvDeliveryMaxDistanceKm = "BARGEN_DELIVERY_MAX_DISTANCE_KM"

	EnvCartInsuranceCatalog = "BARGEN_CART_INSURANCE_CATALOG"

	EnvNotificationRetentionDays = "BARGEN_NOTIFICATION_RETENTION_DAYS"

	EnvGCSBucket = "BARGEN_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
