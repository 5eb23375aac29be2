package config

// EnvPrefix scopes every variable read by envconfig.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvLogLevel = "STOREFRONT_LOG_LEVEL"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvOrdersCancellationLimit  = "STOREFRONT_ORDERS_CANCELLATION_LIMIT"
	EnvOrdersCancellationWindow = "STOREFRONT_ORDERS_CANCELLATION_WINDOW"
	EnvOrdersDefaultCountry     = "STOREFRONT_ORDERS_DEFAULT_COUNTRY"
	EnvWalletStartingBalance    = "STOREFRONT_WALLET_STARTING_BALANCE_CENTS"

	EnvOutboxChannel = "STOREFRONT_OUTBOX_CHANNEL"
)

// legacyDBEnvVars are required when no DSN is supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
