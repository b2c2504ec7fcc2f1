package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the console service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Reporting     ReportingConfig     `mapstructure:"reporting"`
	Analytics     AnalyticsConfig     `mapstructure:"analytics"`
	Seed          SeedConfig          `mapstructure:"seed"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	ListenAddr            string        `mapstructure:"listen_addr"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	ReadHeaderTimeout     time.Duration `mapstructure:"read_header_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	RunMigrations   bool          `mapstructure:"run_migrations"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MinConns        int32         `mapstructure:"min_conns"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ReportingConfig pins the business calendar every aggregation uses.
type ReportingConfig struct {
	Timezone        string `mapstructure:"timezone"`
	LaunchYear      int    `mapstructure:"launch_year"`
	BillingCurrency string `mapstructure:"billing_currency"`
}

// AnalyticsConfig tunes the usage-analytics surface.
type AnalyticsConfig struct {
	LeaderTolerance  float64       `mapstructure:"leader_tolerance"`
	LeaderSessionTTL time.Duration `mapstructure:"leader_session_ttl"`
	TopLimit         int           `mapstructure:"top_limit"`
}

// SeedConfig declares the exchange-rate snapshot and model-pricing rows the
// seedrates command upserts.
type SeedConfig struct {
	ExchangeRates []ExchangeRateSeed `mapstructure:"exchange_rates"`
	ModelPricing  []ModelPricingSeed `mapstructure:"model_pricing"`
}

type ExchangeRateSeed struct {
	QuoteCurrency string  `mapstructure:"quote_currency"`
	Rate          float64 `mapstructure:"rate"`
}

type ModelPricingSeed struct {
	ModelName        string  `mapstructure:"model_name"`
	InputPerMTokens  float64 `mapstructure:"input_per_mtokens"`
	OutputPerMTokens float64 `mapstructure:"output_per_mtokens"`
	CachePerMTokens  float64 `mapstructure:"cache_per_mtokens"`
	IsActive         bool    `mapstructure:"is_active"`
}

type ObservabilityConfig struct {
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else {
		if cfg := os.Getenv("CONSOLE_CONFIG_FILE"); cfg != "" {
			v.SetConfigFile(cfg)
			explicitFile = true
		}
	}

	if !explicitFile {
		// Allow standard lookup locations when no explicit file is provided.
		v.SetConfigName("console")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(timeStringToDurationHook())); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures required values are set.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.URL == "" {
		missing = append(missing, "CONSOLE_DATABASE_URL")
	}
	if c.Redis.URL == "" {
		missing = append(missing, "CONSOLE_REDIS_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Database.RunMigrations && c.Database.MigrationsDir == "" {
		return fmt.Errorf("database.migrations_dir must be provided when run_migrations is true")
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must be >= 0")
	}
	if c.Redis.PoolSize < 0 {
		return fmt.Errorf("redis.pool_size must be >= 0")
	}

	reportingTZ := strings.TrimSpace(c.Reporting.Timezone)
	if reportingTZ == "" {
		reportingTZ = "UTC"
	}
	if _, err := time.LoadLocation(reportingTZ); err != nil {
		return fmt.Errorf("invalid reporting.timezone: %w", err)
	}
	c.Reporting.Timezone = reportingTZ

	currentYear := time.Now().Year()
	if c.Reporting.LaunchYear < 2000 || c.Reporting.LaunchYear > currentYear {
		return fmt.Errorf("reporting.launch_year must be between 2000 and %d", currentYear)
	}
	c.Reporting.BillingCurrency = strings.ToUpper(strings.TrimSpace(c.Reporting.BillingCurrency))
	if len(c.Reporting.BillingCurrency) != 3 {
		return fmt.Errorf("reporting.billing_currency must be a three-letter code")
	}

	if c.Analytics.LeaderTolerance < 0 {
		return fmt.Errorf("analytics.leader_tolerance must be >= 0")
	}
	if c.Analytics.LeaderSessionTTL <= 0 {
		return fmt.Errorf("analytics.leader_session_ttl must be > 0")
	}
	if c.Analytics.TopLimit <= 0 {
		return fmt.Errorf("analytics.top_limit must be > 0")
	}

	for i, rate := range c.Seed.ExchangeRates {
		if len(strings.TrimSpace(rate.QuoteCurrency)) != 3 {
			return fmt.Errorf("seed.exchange_rates[%d].quote_currency must be a three-letter code", i)
		}
		if rate.Rate <= 0 {
			return fmt.Errorf("seed.exchange_rates[%d].rate must be > 0", i)
		}
	}
	for i, pricing := range c.Seed.ModelPricing {
		if strings.TrimSpace(pricing.ModelName) == "" {
			return fmt.Errorf("seed.model_pricing[%d].model_name must be provided", i)
		}
		if pricing.InputPerMTokens < 0 || pricing.OutputPerMTokens < 0 || pricing.CachePerMTokens < 0 {
			return fmt.Errorf("seed.model_pricing[%d] prices must be >= 0", i)
		}
	}

	return nil
}

// Location resolves the validated reporting timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.body_limit_mb", 4)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("database.run_migrations", true)
	v.SetDefault("database.migrations_dir", "./migrations")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("reporting.timezone", "UTC")
	v.SetDefault("reporting.launch_year", 2023)
	v.SetDefault("reporting.billing_currency", "EUR")

	v.SetDefault("analytics.leader_tolerance", 0.01)
	v.SetDefault("analytics.leader_session_ttl", "30m")
	v.SetDefault("analytics.top_limit", 5)

	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "http://localhost:4317")
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
