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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
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
	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KABIPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"KABIPOS_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"KABIPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KABIPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"KABIPOS_DB_DSN"`
	Driver string `envconfig:"KABIPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KABIPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"KABIPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KABIPOS_DB_USER"`
	LegacyPassword string `envconfig:"KABIPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"KABIPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"KABIPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KABIPOS_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"KABIPOS_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"KABIPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KABIPOS_DB_CONN_MAX_IDLE_TIME" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KABIPOS_REDIS_URL"`
	Address      string        `envconfig:"KABIPOS_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"KABIPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"KABIPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KABIPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KABIPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KABIPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KABIPOS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"KABIPOS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KABIPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KABIPOS_JWT_ISSUER" default:"kabipos"`
	ExpirationMinutes int    `envconfig:"KABIPOS_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

func (j JWTConfig) validate() error {
	if strings.TrimSpace(j.Secret) == "" {
		return fmt.Errorf("%s is required", EnvJWTSecret)
	}
	if j.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	return nil
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"KABIPOS_BCRYPT_COST" default:"10"`
}

type RateLimitConfig struct {
	APIWindow       time.Duration `envconfig:"KABIPOS_RATE_LIMIT_API_WINDOW" default:"15m"`
	APILimit        int           `envconfig:"KABIPOS_RATE_LIMIT_API_LIMIT" default:"100"`
	LoginWindow     time.Duration `envconfig:"KABIPOS_RATE_LIMIT_LOGIN_WINDOW" default:"1h"`
	LoginIPLimit    int           `envconfig:"KABIPOS_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
	LoginEmailLimit int           `envconfig:"KABIPOS_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"KABIPOS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KABIPOS_AUTO_MIGRATE" default:"false"`
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
