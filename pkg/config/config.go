package config

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Auth          AuthConfig
	WriteLimit    WriteRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	Delivery      DeliveryConfig
	Cart          CartConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	GCP           GCPConfig
	GCS           GCSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.App.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Delivery.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Cart.Options(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BARGEN_APP_ENV" required:"true"`
	Port         string `envconfig:"BARGEN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BARGEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BARGEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

func (a AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.Env)) {
	case AppEnvDev, AppEnvStaging, AppEnvProd, "production", "test":
		return nil
	default:
		return fmt.Errorf("%s must be one of dev, staging, prod, test (got %q)", EnvAppEnv, a.Env)
	}
}

type ServiceConfig struct {
	Kind string `envconfig:"BARGEN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BARGEN_DB_DSN"`
	Driver string `envconfig:"BARGEN_DB_DRIVER" default:"postgres"`

	// SQLitePath is used when the sqlite feature flag is on.
	SQLitePath string `envconfig:"BARGEN_DB_SQLITE_PATH" default:"file:bargen.db?cache=shared"`

	LegacyHost     string `envconfig:"BARGEN_DB_HOST"`
	LegacyPort     int    `envconfig:"BARGEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BARGEN_DB_USER"`
	LegacyPassword string `envconfig:"BARGEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"BARGEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"BARGEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BARGEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BARGEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BARGEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BARGEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// ConnectAttempts bounds the startup ping retries while the database boots.
	ConnectAttempts int           `envconfig:"BARGEN_DB_CONNECT_ATTEMPTS" default:"5"`
	SlowQuery       time.Duration `envconfig:"BARGEN_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL            string        `envconfig:"BARGEN_REDIS_URL"`
	Address        string        `envconfig:"BARGEN_REDIS_ADDR" default:"localhost:6379"`
	Password       string        `envconfig:"BARGEN_REDIS_PASSWORD"`
	DB             int           `envconfig:"BARGEN_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"BARGEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"BARGEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"BARGEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"BARGEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"BARGEN_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"BARGEN_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BARGEN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BARGEN_JWT_ISSUER" default:"bargen"`
	ExpirationMinutes int    `envconfig:"BARGEN_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthConfig struct {
	// AdminPrincipals are resolved as admin without a stored role.
	AdminPrincipals []string `envconfig:"BARGEN_AUTH_ADMIN_PRINCIPALS"`
}

type WriteRateLimitConfig struct {
	Window time.Duration `envconfig:"BARGEN_WRITE_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"BARGEN_WRITE_RATE_LIMIT" default:"120"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BARGEN_CORS_ALLOWED_ORIGINS"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BARGEN_FEATURE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BARGEN_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	NotificationsEnabled bool `envconfig:"BARGEN_EVENTING_SHOPKEEPER_NOTIFICATIONS" default:"true"`
}

type DeliveryConfig struct {
	RatePerKm           int64   `envconfig:"BARGEN_DELIVERY_RATE_PER_KM" default:"100000"`
	MinimumFee          int64   `envconfig:"BARGEN_DELIVERY_MINIMUM_FEE" default:"0"`
	MaxDistanceKm       float64 `envconfig:"BARGEN_DELIVERY_MAX_DISTANCE_KM" default:"500"`
	AssignmentBatchSize int     `envconfig:"BARGEN_DELIVERY_ASSIGNMENT_BATCH_SIZE" default:"25"`
}

func (d DeliveryConfig) validate() error {
	if d.RatePerKm < 0 {
		return fmt.Errorf("%s must be >= 0", EnvDeliveryRatePerKm)
	}
	if d.MinimumFee < 0 {
		return fmt.Errorf("%s must be >= 0", EnvDeliveryMinimumFee)
	}
	if !(d.MaxDistanceKm > 0) || math.IsInf(d.MaxDistanceKm, 0) {
		return fmt.Errorf("%s must be a positive finite number", EnvDeliveryMaxDistanceKm)
	}
	return nil
}

// InsuranceOption mirrors the configurable deal protection catalog entry.
type InsuranceOption struct {
	Name           string `json:"name"`
	Details        string `json:"details"`
	Premium        int64  `json:"premium"`
	CoverageAmount int64  `json:"coverageAmount"`
}

var defaultInsuranceOptions = []InsuranceOption{
	{Name: "Basic Deal Protection", Details: "Covers damage or non-delivery on small purchases.", Premium: 4900, CoverageAmount: 100000},
	{Name: "Standard Deal Protection", Details: "Covers damage, non-delivery and misdescribed items.", Premium: 14900, CoverageAmount: 500000},
	{Name: "Premium Deal Protection", Details: "Full coverage including returns refused by the shop.", Premium: 39900, CoverageAmount: 2000000},
}

type CartConfig struct {
	// InsuranceCatalogJSON overrides the default insurance catalog.
	InsuranceCatalogJSON string `envconfig:"BARGEN_CART_INSURANCE_CATALOG"`
}

// Options returns the deal protection catalog.
func (c CartConfig) Options() ([]InsuranceOption, error) {
	raw := strings.TrimSpace(c.InsuranceCatalogJSON)
	if raw == "" {
		out := make([]InsuranceOption, len(defaultInsuranceOptions))
		copy(out, defaultInsuranceOptions)
		return out, nil
	}
	var opts []InsuranceOption
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", EnvCartInsuranceCatalog, err)
	}
	seen := map[string]struct{}{}
	for _, opt := range opts {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			return nil, fmt.Errorf("%s: insurance name is required", EnvCartInsuranceCatalog)
		}
		if opt.Premium < 0 || opt.CoverageAmount < 0 {
			return nil, fmt.Errorf("%s: %q has negative amounts", EnvCartInsuranceCatalog, name)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s: duplicate insurance %q", EnvCartInsuranceCatalog, name)
		}
		seen[key] = struct{}{}
	}
	return opts, nil
}

type NotificationsConfig struct {
	RetentionDays int `envconfig:"BARGEN_NOTIFICATION_RETENTION_DAYS" default:"30"`
	// CleanupBatchSize bounds the rows removed per cleanup transaction.
	CleanupBatchSize int `envconfig:"BARGEN_NOTIFICATION_CLEANUP_BATCH" default:"500"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"BARGEN_CRON_INTERVAL" default:"1m"`
	JobTimeout time.Duration `envconfig:"BARGEN_CRON_JOB_TIMEOUT" default:"45s"`
	// MetricsAddr serves /metrics from the worker when set, e.g. ":9091".
	MetricsAddr string `envconfig:"BARGEN_CRON_METRICS_ADDR"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"BARGEN_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"BARGEN_GCP_CREDENTIALS_JSON"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"BARGEN_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"BARGEN_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

// Enabled reports whether blob byte access is configured.
func (g GCSConfig) Enabled() bool {
	return strings.TrimSpace(g.BucketName) != ""
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
