package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HOMECHEF_DATABASE_PASSWORD
const EnvPrefix = "HOMECHEF"

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	Event        EventConfig
	HTTP         HTTPConfig
	Scheduler    SchedulerConfig
	Telemetry    TelemetryConfig
	Storage      StorageConfig
	Ordering     OrderingConfig
	Loyalty      LoyaltyConfig
	Routing      RoutingConfig
	Notification NotificationConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. When disabled, idempotency
// and realtime fan-out stay in process.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for validating access tokens issued by the
// identity provider
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// EventConfig holds outbox processing configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupRetention time.Duration
	IdempotencyTTL   time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SchedulerConfig holds the cron specs of the background jobs
type SchedulerConfig struct {
	Enabled            bool
	ApprovalExpirySpec string
	AutoCompleteSpec   string
	OutboxCleanupSpec  string
	JobTimeout         time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	PrometheusEnabled bool // Serve HTTP request metrics on /metrics
	// MetricsAllowedIPs restricts /metrics to these IPs or CIDRs; empty allows all
	MetricsAllowedIPs []string
	// Database tracing options
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	// Logs are bridged from zap to the collector when set
	LogsEnabled bool
	// Continuous profiling (Pyroscope)
	ProfilingEnabled bool
	ProfilingServer  string
}

// StorageConfig holds S3-compatible object storage settings for dish photos
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	UsePathStyle      bool
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// OrderingConfig holds the order lifecycle rules
type OrderingConfig struct {
	Currency            string
	ApprovalTimeout     time.Duration
	AutoCompleteAfter   time.Duration
	MaxCashOrderAmount  string
	MaxOpenCashOrders   int64
	MaxActiveDeliveries int64
	DeliveryFeeBase     string
	DeliveryFeePerKm    string
	BatchSize           int
}

// TierConfig is one loyalty tier
type TierConfig struct {
	Tier       string `mapstructure:"tier"`
	Threshold  int64  `mapstructure:"threshold"`
	Multiplier string `mapstructure:"multiplier"`
}

// LoyaltyConfig holds the points program parameters
type LoyaltyConfig struct {
	PointsPerUnit         string
	PointsPerUnitRedeemed int64
	MaxRedeemRatio        string
	Tiers                 []TierConfig
}

// RoutingConfig holds route optimizer parameters
type RoutingConfig struct {
	AverageSpeedKmh float64
	MaxIterations   int
}

// NotificationConfig holds the outbound channel settings
type NotificationConfig struct {
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	EmailFrom      string
	EmailLanguage  string
	PushGatewayURL string
	PushAPIKey     string
	PushTimeout    time.Duration
}

// EmailEnabled reports whether an SMTP relay is configured
func (n NotificationConfig) EmailEnabled() bool {
	return n.SMTPHost != ""
}

// PushEnabled reports whether a push gateway is configured
func (n NotificationConfig) PushEnabled() bool {
	return n.PushGatewayURL != ""
}

// Load loads configuration from an optional .env file, config.toml and
// environment variables.
// Priority (highest to lowest):
// 1. Environment variables with HOMECHEF_ prefix (e.g., HOMECHEF_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event.processor_enabled"),
			BatchSize:        v.GetInt("event.batch_size"),
			PollInterval:     v.GetDuration("event.poll_interval"),
			MaxRetries:       v.GetInt("event.max_retries"),
			CleanupRetention: v.GetDuration("event.cleanup_retention"),
			IdempotencyTTL:   v.GetDuration("event.idempotency_ttl"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:            v.GetBool("scheduler.enabled"),
			ApprovalExpirySpec: v.GetString("scheduler.approval_expiry_spec"),
			AutoCompleteSpec:   v.GetString("scheduler.auto_complete_spec"),
			OutboxCleanupSpec:  v.GetString("scheduler.outbox_cleanup_spec"),
			JobTimeout:         v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			PrometheusEnabled: v.GetBool("telemetry.prometheus_enabled"),
			MetricsAllowedIPs: v.GetStringSlice("telemetry.metrics_allowed_ips"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:   v.GetString("telemetry.profiling_server"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKeyID:       v.GetString("storage.access_key_id"),
			SecretAccessKey:   v.GetString("storage.secret_access_key"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			UploadURLExpiry:   v.GetDuration("storage.upload_url_expiry"),
			DownloadURLExpiry: v.GetDuration("storage.download_url_expiry"),
		},
		Ordering: OrderingConfig{
			Currency:            v.GetString("ordering.currency"),
			ApprovalTimeout:     v.GetDuration("ordering.approval_timeout"),
			AutoCompleteAfter:   v.GetDuration("ordering.auto_complete_after"),
			MaxCashOrderAmount:  v.GetString("ordering.max_cash_order_amount"),
			MaxOpenCashOrders:   v.GetInt64("ordering.max_open_cash_orders"),
			MaxActiveDeliveries: v.GetInt64("ordering.max_active_deliveries"),
			DeliveryFeeBase:     v.GetString("ordering.delivery_fee_base"),
			DeliveryFeePerKm:    v.GetString("ordering.delivery_fee_per_km"),
			BatchSize:           v.GetInt("ordering.batch_size"),
		},
		Loyalty: LoyaltyConfig{
			PointsPerUnit:         v.GetString("loyalty.points_per_unit"),
			PointsPerUnitRedeemed: v.GetInt64("loyalty.points_per_unit_redeemed"),
			MaxRedeemRatio:        v.GetString("loyalty.max_redeem_ratio"),
		},
		Routing: RoutingConfig{
			AverageSpeedKmh: v.GetFloat64("routing.average_speed_kmh"),
			MaxIterations:   v.GetInt("routing.max_iterations"),
		},
		Notification: NotificationConfig{
			SMTPHost:       v.GetString("notification.smtp_host"),
			SMTPPort:       v.GetInt("notification.smtp_port"),
			SMTPUsername:   v.GetString("notification.smtp_username"),
			SMTPPassword:   v.GetString("notification.smtp_password"),
			EmailFrom:      v.GetString("notification.email_from"),
			EmailLanguage:  v.GetString("notification.email_language"),
			PushGatewayURL: v.GetString("notification.push_gateway_url"),
			PushAPIKey:     v.GetString("notification.push_api_key"),
			PushTimeout:    v.GetDuration("notification.push_timeout"),
		},
	}
	if err := v.UnmarshalKey("loyalty.tiers", &cfg.Loyalty.Tiers); err != nil {
		return nil, fmt.Errorf("invalid loyalty.tiers: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "homechef-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "homechef"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "homechef-identity"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Event.BatchSize == 0 {
		cfg.Event.BatchSize = 100
	}
	if cfg.Event.PollInterval == 0 {
		cfg.Event.PollInterval = 2 * time.Second
	}
	if cfg.Event.MaxRetries == 0 {
		cfg.Event.MaxRetries = 5
	}
	if cfg.Event.CleanupRetention == 0 {
		cfg.Event.CleanupRetention = 168 * time.Hour
	}
	if cfg.Event.IdempotencyTTL == 0 {
		cfg.Event.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB; photos go straight to storage
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty origin list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.ApprovalExpirySpec == "" {
		cfg.Scheduler.ApprovalExpirySpec = "@every 1m"
	}
	if cfg.Scheduler.AutoCompleteSpec == "" {
		cfg.Scheduler.AutoCompleteSpec = "@every 10m"
	}
	if cfg.Scheduler.OutboxCleanupSpec == "" {
		cfg.Scheduler.OutboxCleanupSpec = "@hourly"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "homechef-backend"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.ProfilingServer == "" {
		cfg.Telemetry.ProfilingServer = "http://localhost:4040"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.UploadURLExpiry == 0 {
		cfg.Storage.UploadURLExpiry = 15 * time.Minute
	}
	if cfg.Storage.DownloadURLExpiry == 0 {
		cfg.Storage.DownloadURLExpiry = time.Hour
	}
	if cfg.Ordering.Currency == "" {
		cfg.Ordering.Currency = "USD"
	}
	if cfg.Ordering.ApprovalTimeout == 0 {
		cfg.Ordering.ApprovalTimeout = 15 * time.Minute
	}
	if cfg.Ordering.AutoCompleteAfter == 0 {
		cfg.Ordering.AutoCompleteAfter = 2 * time.Hour
	}
	if cfg.Ordering.MaxCashOrderAmount == "" {
		cfg.Ordering.MaxCashOrderAmount = "150.00"
	}
	if cfg.Ordering.MaxOpenCashOrders == 0 {
		cfg.Ordering.MaxOpenCashOrders = 2
	}
	if cfg.Ordering.MaxActiveDeliveries == 0 {
		cfg.Ordering.MaxActiveDeliveries = 3
	}
	if cfg.Ordering.DeliveryFeeBase == "" {
		cfg.Ordering.DeliveryFeeBase = "2.50"
	}
	if cfg.Ordering.DeliveryFeePerKm == "" {
		cfg.Ordering.DeliveryFeePerKm = "0.80"
	}
	if cfg.Ordering.BatchSize == 0 {
		cfg.Ordering.BatchSize = 100
	}
	if cfg.Loyalty.PointsPerUnit == "" {
		cfg.Loyalty.PointsPerUnit = "10"
	}
	if cfg.Loyalty.PointsPerUnitRedeemed == 0 {
		cfg.Loyalty.PointsPerUnitRedeemed = 100
	}
	if cfg.Loyalty.MaxRedeemRatio == "" {
		cfg.Loyalty.MaxRedeemRatio = "0.5"
	}
	if len(cfg.Loyalty.Tiers) == 0 {
		cfg.Loyalty.Tiers = []TierConfig{
			{Tier: string(loyalty.TierBronze), Threshold: 0, Multiplier: "1"},
			{Tier: string(loyalty.TierSilver), Threshold: 500, Multiplier: "1.25"},
			{Tier: string(loyalty.TierGold), Threshold: 2000, Multiplier: "1.5"},
			{Tier: string(loyalty.TierPlatinum), Threshold: 5000, Multiplier: "2"},
		}
	}
	if cfg.Routing.AverageSpeedKmh == 0 {
		cfg.Routing.AverageSpeedKmh = 25
	}
	if cfg.Routing.MaxIterations == 0 {
		cfg.Routing.MaxIterations = 100
	}
	if cfg.Notification.SMTPPort == 0 {
		cfg.Notification.SMTPPort = 587
	}
	if cfg.Notification.EmailFrom == "" {
		cfg.Notification.EmailFrom = "HomeChef <no-reply@homechef.local>"
	}
	if cfg.Notification.EmailLanguage == "" {
		cfg.Notification.EmailLanguage = "en"
	}
	if cfg.Notification.PushTimeout == 0 {
		cfg.Notification.PushTimeout = 5 * time.Second
	}
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if port, err := parsePort(c.App.Port); err != nil || port == 0 {
		return fmt.Errorf("app.port must be a number between 1 and 65535, got %q", c.App.Port)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	for name, value := range map[string]string{
		"ordering.max_cash_order_amount": c.Ordering.MaxCashOrderAmount,
		"ordering.delivery_fee_base":     c.Ordering.DeliveryFeeBase,
		"ordering.delivery_fee_per_km":   c.Ordering.DeliveryFeePerKm,
	} {
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("%s must be a non-negative amount, got %q", name, value)
		}
	}
	if c.Ordering.ApprovalTimeout <= 0 || c.Ordering.AutoCompleteAfter <= 0 {
		return fmt.Errorf("ordering timeouts must be positive")
	}
	if c.Routing.AverageSpeedKmh <= 0 {
		return fmt.Errorf("routing.average_speed_kmh must be positive")
	}

	if _, err := c.Loyalty.Program(); err != nil {
		return fmt.Errorf("invalid loyalty config: %w", err)
	}

	return nil
}

// Program builds the loyalty program and checks its consistency: tier
// thresholds must ascend from 0 and the redeem ratio must lie in (0, 1].
func (l LoyaltyConfig) Program() (loyalty.Program, error) {
	perUnit, err := decimal.NewFromString(l.PointsPerUnit)
	if err != nil {
		return loyalty.Program{}, fmt.Errorf("points_per_unit: %w", err)
	}
	ratio, err := decimal.NewFromString(l.MaxRedeemRatio)
	if err != nil {
		return loyalty.Program{}, fmt.Errorf("max_redeem_ratio: %w", err)
	}
	program := loyalty.Program{
		PointsPerUnit:         perUnit,
		PointsPerUnitRedeemed: l.PointsPerUnitRedeemed,
		MaxRedeemRatio:        ratio,
		Tiers:                 make([]loyalty.TierRule, len(l.Tiers)),
	}
	for i, t := range l.Tiers {
		multiplier, err := decimal.NewFromString(t.Multiplier)
		if err != nil {
			return loyalty.Program{}, fmt.Errorf("tier %s multiplier: %w", t.Tier, err)
		}
		program.Tiers[i] = loyalty.TierRule{
			Tier:       loyalty.Tier(strings.ToUpper(t.Tier)),
			Threshold:  t.Threshold,
			Multiplier: multiplier,
		}
	}
	if err := program.Validate(); err != nil {
		return loyalty.Program{}, err
	}
	return program, nil
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range")
	}
	return port, nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
