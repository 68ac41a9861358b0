package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Cart     CartConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	DB       DBConfig
	Redis    RedisConfig
	Flags    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	switch cfg.Cart.Storage {
	case CartStorageRedis:
		if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
			return nil, fmt.Errorf("%s or %s is required when cart storage is redis", EnvRedisURL, EnvRedisAddr)
		}
	case CartStoragePostgres:
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("%s is required when cart storage is postgres", EnvDBDSN)
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIENDAZO_APP_ENV" required:"true"`
	Port         string `envconfig:"TIENDAZO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIENDAZO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDAZO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// BackendConfig points at the upstream commerce API that owns catalog,
// pricing, stock and orders.
type BackendConfig struct {
	BaseURL        string        `envconfig:"TIENDAZO_BACKEND_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"TIENDAZO_BACKEND_TIMEOUT" default:"15s"`
}

type CartConfig struct {
	Storage   string `envconfig:"TIENDAZO_CART_STORAGE" default:"redis"`
	KeyPrefix string `envconfig:"TIENDAZO_CART_KEY_PREFIX" default:"cart"`
}

func (c CartConfig) validate() error {
	switch c.Storage {
	case CartStorageRedis, CartStoragePostgres, CartStorageMemory:
		return nil
	}
	return fmt.Errorf("unsupported cart storage %q", c.Storage)
}

type SessionConfig struct {
	CookieName     string        `envconfig:"TIENDAZO_SESSION_COOKIE_NAME" default:"access_token"`
	CartCookieName string        `envconfig:"TIENDAZO_CART_COOKIE_NAME" default:"tz_cart"`
	CookieDomain   string        `envconfig:"TIENDAZO_SESSION_COOKIE_DOMAIN"`
	CookieTTL      time.Duration `envconfig:"TIENDAZO_SESSION_COOKIE_TTL" default:"720h"`
	CookieSecure   bool          `envconfig:"TIENDAZO_SESSION_COOKIE_SECURE" default:"true"`
}

type CheckoutConfig struct {
	// TaxRate is display-only; the backend owns authoritative totals.
	TaxRate         string `envconfig:"TIENDAZO_CHECKOUT_TAX_RATE" default:"0.19"`
	FallbackMessage string `envconfig:"TIENDAZO_CHECKOUT_FALLBACK_MESSAGE" default:"No pudimos procesar tu pedido. Intenta nuevamente."`
}

// TaxRateDecimal parses the configured VAT rate, falling back to 19%.
func (c CheckoutConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil || rate.IsNegative() {
		return decimal.NewFromFloat(0.19)
	}
	return rate
}

type DBConfig struct {
	DSN string `envconfig:"TIENDAZO_DB_DSN"`

	MaxOpenConns    int           `envconfig:"TIENDAZO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDAZO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDAZO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDAZO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDAZO_REDIS_URL"`
	Address      string        `envconfig:"TIENDAZO_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDAZO_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDAZO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDAZO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDAZO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDAZO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDAZO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIENDAZO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate     bool `envconfig:"TIENDAZO_AUTO_MIGRATE" default:"false"`
	RecheckStock    bool `envconfig:"TIENDAZO_CHECKOUT_RECHECK_STOCK" default:"true"`
	UseSQLiteForDev bool `envconfig:"TIENDAZO_USE_SQLITE" default:"false"`
}
