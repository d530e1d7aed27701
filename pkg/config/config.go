package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "jewelpos"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "JEWELPOS_DB_DSN"
	EnvDBHost = "JEWELPOS_DB_HOST"
	EnvDBUser = "JEWELPOS_DB_USER"
	EnvDBName = "JEWELPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Billing      BillingConfig
	Stock        StockConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"JEWELPOS_APP_ENV" required:"true"`
	Port         string   `envconfig:"JEWELPOS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"JEWELPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"JEWELPOS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"JEWELPOS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"JEWELPOS_DB_DSN"`
	Driver string `envconfig:"JEWELPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"JEWELPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"JEWELPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"JEWELPOS_DB_USER"`
	LegacyPassword string `envconfig:"JEWELPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"JEWELPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"JEWELPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JEWELPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JEWELPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JEWELPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JEWELPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JEWELPOS_REDIS_URL" required:"true"`
	Password     string        `envconfig:"JEWELPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"JEWELPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"JEWELPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JEWELPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JEWELPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JEWELPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JEWELPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"JEWELPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"JEWELPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"JEWELPOS_JWT_EXPIRATION_MINUTES" default:"480"`
	IdleTimeoutMin    int    `envconfig:"JEWELPOS_SESSION_IDLE_TIMEOUT_MINUTES" default:"30"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// IdleTimeout returns how long a session may sit untouched before expiring.
func (j JWTConfig) IdleTimeout() time.Duration {
	if j.IdleTimeoutMin <= 0 {
		return 0
	}
	return time.Duration(j.IdleTimeoutMin) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JEWELPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JEWELPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JEWELPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JEWELPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JEWELPOS_ARGON_KEY_LEN" default:"32"`
}

type BillingConfig struct {
	DiscountApprovalThreshold float64       `envconfig:"JEWELPOS_DISCOUNT_APPROVAL_THRESHOLD" default:"10"`
	ApprovalPollInterval      time.Duration `envconfig:"JEWELPOS_APPROVAL_POLL_INTERVAL" default:"4s"`
	WalkInCustomerName        string        `envconfig:"JEWELPOS_WALKIN_CUSTOMER_NAME" default:"Walk-in Customer"`
}

type StockConfig struct {
	Channel           string        `envconfig:"JEWELPOS_STOCK_CHANNEL" default:"jewelpos:stock:changes"`
	KeepaliveInterval time.Duration `envconfig:"JEWELPOS_STOCK_KEEPALIVE_INTERVAL" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"JEWELPOS_FEATURE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
