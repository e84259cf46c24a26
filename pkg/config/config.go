package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	OTP          OTPConfig
	Password     PasswordConfig
	Stock        StockConfig
	Kafka        KafkaConfig
	Idempotency  IdempotencyConfig
	RateLimit    AuthRateLimitConfig
	Cron         CronConfig
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
	Env          string   `envconfig:"STOCKROOM_APP_ENV" required:"true"`
	Port         string   `envconfig:"STOCKROOM_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"STOCKROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STOCKROOM_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STOCKROOM_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOCKROOM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKROOM_DB_DSN"`
	Driver string `envconfig:"STOCKROOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKROOM_DB_USER"`
	LegacyPassword string `envconfig:"STOCKROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKROOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKROOM_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKROOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKROOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOCKROOM_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type OTPConfig struct {
	TTL            time.Duration `envconfig:"STOCKROOM_OTP_TTL" default:"10m"`
	ResendInterval time.Duration `envconfig:"STOCKROOM_OTP_RESEND_INTERVAL" default:"5s"`
	Digits         int           `envconfig:"STOCKROOM_OTP_DIGITS" default:"6"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKROOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKROOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKROOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKROOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKROOM_ARGON_KEY_LEN" default:"32"`
}

type StockConfig struct {
	AllowNegative bool `envconfig:"STOCKROOM_STOCK_ALLOW_NEGATIVE" default:"true"`
}

type KafkaConfig struct {
	Brokers      []string      `envconfig:"STOCKROOM_KAFKA_BROKERS"`
	OrdersTopic  string        `envconfig:"STOCKROOM_KAFKA_ORDERS_TOPIC" default:"stockroom.orders"`
	WriteTimeout time.Duration `envconfig:"STOCKROOM_KAFKA_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether at least one broker is configured.
func (k KafkaConfig) Enabled() bool {
	for _, b := range k.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"STOCKROOM_IDEMPOTENCY_TTL" default:"24h"`
}

// AuthRateLimitConfig bounds unauthenticated OTP and login attempts per
// client IP and per mobile number. A zero limit disables that dimension.
type AuthRateLimitConfig struct {
	OTPWindow        time.Duration `envconfig:"STOCKROOM_RATE_LIMIT_OTP_WINDOW" default:"15m"`
	OTPIPLimit       int           `envconfig:"STOCKROOM_RATE_LIMIT_OTP_IP" default:"20"`
	OTPMobileLimit   int           `envconfig:"STOCKROOM_RATE_LIMIT_OTP_MOBILE" default:"5"`
	LoginWindow      time.Duration `envconfig:"STOCKROOM_RATE_LIMIT_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit     int           `envconfig:"STOCKROOM_RATE_LIMIT_LOGIN_IP" default:"30"`
	LoginMobileLimit int           `envconfig:"STOCKROOM_RATE_LIMIT_LOGIN_MOBILE" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"STOCKROOM_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"STOCKROOM_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKROOM_AUTO_MIGRATE" default:"false"`
	RequireAuth bool `envconfig:"STOCKROOM_REQUIRE_AUTH" default:"false"`
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
