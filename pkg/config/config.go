package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STUDIOCART"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "STUDIOCART_APP_ENV"
	EnvPort     = "STUDIOCART_APP_PORT"
	EnvDBDSN    = "STUDIOCART_DB_DSN"
	EnvDBHost   = "STUDIOCART_DB_HOST"
	EnvDBUser   = "STUDIOCART_DB_USER"
	EnvDBName   = "STUDIOCART_DB_NAME"
	EnvRedisURL = "STUDIOCART_REDIS_URL"

	EnvJWTSecret  = "STUDIOCART_JWT_SECRET"
	EnvJWTIssuer  = "STUDIOCART_JWT_ISSUER"
	EnvJWTExpMins = "STUDIOCART_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "STUDIOCART_GCP_PROJECT_ID"
	EnvGCSBucket    = "STUDIOCART_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Upload       UploadConfig
	Cart         CartConfig
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
	Env          string `envconfig:"STUDIOCART_APP_ENV" required:"true"`
	Port         string `envconfig:"STUDIOCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STUDIOCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STUDIOCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STUDIOCART_DB_DSN"`
	Driver string `envconfig:"STUDIOCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STUDIOCART_DB_HOST"`
	LegacyPort     int    `envconfig:"STUDIOCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STUDIOCART_DB_USER"`
	LegacyPassword string `envconfig:"STUDIOCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"STUDIOCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"STUDIOCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STUDIOCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STUDIOCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STUDIOCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STUDIOCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STUDIOCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STUDIOCART_REDIS_ADDR"`
	Password     string        `envconfig:"STUDIOCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"STUDIOCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STUDIOCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STUDIOCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STUDIOCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STUDIOCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STUDIOCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STUDIOCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STUDIOCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STUDIOCART_JWT_EXPIRATION_MINUTES" required:"true"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"STUDIOCART_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"STUDIOCART_GCP_CREDENTIALS_JSON"`
}

type GCSConfig struct {
	BucketName string `envconfig:"STUDIOCART_GCS_BUCKET_NAME"`
}

type UploadConfig struct {
	MaxUploadMB  int      `envconfig:"STUDIOCART_MAX_UPLOAD_MB" default:"10"`
	AllowedTypes []string `envconfig:"STUDIOCART_UPLOAD_ALLOWED_TYPES" default:"image/png,image/jpeg,image/webp"`
}

type CartConfig struct {
	MirrorTTL time.Duration `envconfig:"STUDIOCART_CART_MIRROR_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STUDIOCART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STUDIOCART_AUTO_MIGRATE" default:"false"`
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
