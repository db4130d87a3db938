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
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	Payments     PaymentsConfig
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
	Env          string `envconfig:"TRACKSPLIT_APP_ENV" required:"true"`
	Port         string `envconfig:"TRACKSPLIT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRACKSPLIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRACKSPLIT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRACKSPLIT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRACKSPLIT_DB_DSN"`
	Driver string `envconfig:"TRACKSPLIT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRACKSPLIT_DB_HOST"`
	LegacyPort     int    `envconfig:"TRACKSPLIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRACKSPLIT_DB_USER"`
	LegacyPassword string `envconfig:"TRACKSPLIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRACKSPLIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRACKSPLIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRACKSPLIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRACKSPLIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRACKSPLIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRACKSPLIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRACKSPLIT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRACKSPLIT_REDIS_ADDR"`
	Password     string        `envconfig:"TRACKSPLIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRACKSPLIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRACKSPLIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRACKSPLIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRACKSPLIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRACKSPLIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRACKSPLIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRACKSPLIT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRACKSPLIT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRACKSPLIT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRACKSPLIT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRACKSPLIT_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"TRACKSPLIT_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	PurchaseDedupeTTL    time.Duration `envconfig:"TRACKSPLIT_EVENTING_PURCHASE_DEDUPE_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TRACKSPLIT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"TRACKSPLIT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TRACKSPLIT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PayoutTopic              string `envconfig:"TRACKSPLIT_PUBSUB_PAYOUT_TOPIC" required:"true"`
	PayoutSubscription       string `envconfig:"TRACKSPLIT_PUBSUB_PAYOUT_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"TRACKSPLIT_PUBSUB_NOTIFICATION_TOPIC" default:"ts-notification-events"`
	NotificationSubscription string `envconfig:"TRACKSPLIT_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TRACKSPLIT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TRACKSPLIT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TRACKSPLIT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PaymentsConfig covers every rail reachable through the payment port.
type PaymentsConfig struct {
	PortTimeout time.Duration `envconfig:"TRACKSPLIT_PAYMENTS_PORT_TIMEOUT" default:"30s"`

	SquareAccessToken string `envconfig:"TRACKSPLIT_SQUARE_ACCESS_TOKEN"`
	SquareEnv         string `envconfig:"TRACKSPLIT_SQUARE_ENV" default:"sandbox"`
	SquareLocationID  string `envconfig:"TRACKSPLIT_SQUARE_LOCATION_ID"`

	ChainNetwork     string        `envconfig:"TRACKSPLIT_CHAIN_NETWORK" default:"testnet"`
	ChainLatency     time.Duration `envconfig:"TRACKSPLIT_CHAIN_LATENCY" default:"150ms"`
	ChainFailureRate float64       `envconfig:"TRACKSPLIT_CHAIN_FAILURE_RATE" default:"0"`
}

// SquareEnvironment returns the normalized Square environment (sandbox/production).
func (p PaymentsConfig) SquareEnvironment() string {
	env := strings.TrimSpace(strings.ToLower(p.SquareEnv))
	if env == "" {
		return "sandbox"
	}
	return env
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
