package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COOPLEDGER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "COOPLEDGER_DB_DSN"
	EnvDBHost = "COOPLEDGER_DB_HOST"
	EnvDBUser = "COOPLEDGER_DB_USER"
	EnvDBName = "COOPLEDGER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Identity     IdentityConfig
	Ledger       LedgerConfig
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
	Env          string `envconfig:"COOPLEDGER_APP_ENV" required:"true"`
	Port         string `envconfig:"COOPLEDGER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COOPLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COOPLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COOPLEDGER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"COOPLEDGER_DB_DSN"`
	Driver string `envconfig:"COOPLEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COOPLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"COOPLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COOPLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"COOPLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"COOPLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"COOPLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COOPLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COOPLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COOPLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COOPLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COOPLEDGER_REDIS_URL"`
	Address      string        `envconfig:"COOPLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"COOPLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"COOPLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COOPLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COOPLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COOPLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COOPLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COOPLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COOPLEDGER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"COOPLEDGER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COOPLEDGER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LedgerTopic        string `envconfig:"COOPLEDGER_PUBSUB_LEDGER_TOPIC" default:"coopledger-ledger-changed"`
	LedgerSubscription string `envconfig:"COOPLEDGER_PUBSUB_LEDGER_SUBSCRIPTION"`
}

// IdentityConfig describes how actor identity is extracted from inbound
// requests. Token verification happens upstream; the API only decodes claims.
type IdentityConfig struct {
	HeaderName    string `envconfig:"COOPLEDGER_IDENTITY_HEADER" default:"Authorization"`
	RequiredScope string `envconfig:"COOPLEDGER_IDENTITY_SCOPE" default:""`
}

// LedgerConfig tunes the ledger engine.
type LedgerConfig struct {
	// ReconcileEpsilon is the tolerance when comparing a fund balance
	// against its transaction history.
	ReconcileEpsilon string `envconfig:"COOPLEDGER_RECONCILE_EPSILON" default:"0.01"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COOPLEDGER_AUTO_MIGRATE" default:"false"`
	StatsNotify bool `envconfig:"COOPLEDGER_STATS_NOTIFY" default:"true"`
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
