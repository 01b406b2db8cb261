// Package config loads application configuration from file and
// environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Policy    PolicyConfig    `yaml:"policy" mapstructure:"policy"`
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// GatewayConfig configures the external data source clients. Empty
// base URLs select the built-in deterministic providers.
type GatewayConfig struct {
	WeatherBaseURL  string  `yaml:"weather_base_url" mapstructure:"weather_base_url"`
	SensorBaseURL   string  `yaml:"sensor_base_url" mapstructure:"sensor_base_url"`
	FireRiskBaseURL string  `yaml:"fire_risk_base_url" mapstructure:"fire_risk_base_url"`
	PSPSBaseURL     string  `yaml:"psps_base_url" mapstructure:"psps_base_url"`
	NDVIBaseURL     string  `yaml:"ndvi_base_url" mapstructure:"ndvi_base_url"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries         int     `yaml:"retries" mapstructure:"retries"`
	RatePerSec      float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// PolicyConfig holds tunable decision thresholds. The defaults match
// the published decision rules; deployments can tighten or relax them.
type PolicyConfig struct {
	FireRiskDelayThreshold float64  `yaml:"fire_risk_delay_threshold" mapstructure:"fire_risk_delay_threshold"`
	MoistureSafeThreshold  float64  `yaml:"moisture_safe_threshold" mapstructure:"moisture_safe_threshold"`
	MoistureLowThreshold   float64  `yaml:"moisture_low_threshold" mapstructure:"moisture_low_threshold"`
	DroughtRiskThreshold   float64  `yaml:"drought_risk_threshold" mapstructure:"drought_risk_threshold"`
	NDVIPoorThreshold      float64  `yaml:"ndvi_poor_threshold" mapstructure:"ndvi_poor_threshold"`
	PSPSWindowHours        int      `yaml:"psps_window_hours" mapstructure:"psps_window_hours"`
	DefaultZones           []string `yaml:"default_zones" mapstructure:"default_zones"`
}

// SchedulerConfig holds the cron expressions for each recurring sweep.
type SchedulerConfig struct {
	IrrigationCron string `yaml:"irrigation_cron" mapstructure:"irrigation_cron"`
	PSPSCron       string `yaml:"psps_cron" mapstructure:"psps_cron"`
	MetricsCron    string `yaml:"metrics_cron" mapstructure:"metrics_cron"`
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FIRELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "fireline.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("gateway.timeout_secs", 5)
	v.SetDefault("gateway.retries", 2)
	v.SetDefault("gateway.rate_per_sec", 10)
	v.SetDefault("policy.fire_risk_delay_threshold", 0.7)
	v.SetDefault("policy.moisture_safe_threshold", 50.0)
	v.SetDefault("policy.moisture_low_threshold", 30.0)
	v.SetDefault("policy.drought_risk_threshold", 0.6)
	v.SetDefault("policy.ndvi_poor_threshold", 0.3)
	v.SetDefault("policy.psps_window_hours", 36)
	v.SetDefault("policy.default_zones", []string{"zone-1", "zone-2"})
	v.SetDefault("scheduler.irrigation_cron", "0 */6 * * *")
	v.SetDefault("scheduler.psps_cron", "*/30 * * * *")
	v.SetDefault("scheduler.metrics_cron", "0 */4 * * *")
	v.SetDefault("scheduler.batch_size", 8)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
