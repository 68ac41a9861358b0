package config

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "TIENDAZO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	CartStorageRedis    = "redis"
	CartStoragePostgres = "postgres"
	CartStorageMemory   = "memory"
)

const (
	EnvAppEnv         = "TIENDAZO_APP_ENV"
	EnvPort           = "TIENDAZO_APP_PORT"
	EnvBackendBaseURL = "TIENDAZO_BACKEND_BASE_URL"
	EnvCartStorage    = "TIENDAZO_CART_STORAGE"
	EnvDBDSN          = "TIENDAZO_DB_DSN"
	EnvRedisURL       = "TIENDAZO_REDIS_URL"
	EnvRedisAddr      = "TIENDAZO_REDIS_ADDR"
)
