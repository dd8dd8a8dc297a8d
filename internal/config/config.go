package config

import (
	"fmt"
	"time"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// EngineConfig holds variant generation engine limits and defaults
type EngineConfig struct {
	MaxVariants    int     `mapstructure:"max_variants"`
	MaxFluctuation float64 `mapstructure:"max_fluctuation"`
	Workers        int     `mapstructure:"workers"`
	FailurePolicy  string  `mapstructure:"failure_policy"`
	OutputDir      string  `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/invoice_variants.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Engine defaults
	viper.SetDefault("engine.max_variants", 100)
	viper.SetDefault("engine.max_fluctuation", 50.0)
	viper.SetDefault("engine.workers", 4)
	viper.SetDefault("engine.failure_policy", string(models.PolicySkipAndContinue))
	viper.SetDefault("engine.output_dir", "generated_batches")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("engine.output_dir", "OUTPUT_DIR")
	viper.BindEnv("engine.max_variants", "MAX_VARIANTS")
	viper.BindEnv("engine.workers", "ENGINE_WORKERS")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Engine.MaxVariants < 1 {
		return fmt.Errorf("engine.max_variants must be at least 1")
	}
	if c.Engine.MaxFluctuation < 0 {
		return fmt.Errorf("engine.max_fluctuation must be non-negative")
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1")
	}
	if _, err := models.ParseFailurePolicy(c.Engine.FailurePolicy); err != nil {
		return fmt.Errorf("engine.failure_policy: %w", err)
	}
	if c.Engine.OutputDir == "" {
		return fmt.Errorf("engine.output_dir is required")
	}
	return nil
}
