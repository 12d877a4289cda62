package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Report   ReportConfig   `mapstructure:"report"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds sqlite configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// OpenAIConfig holds the text-generation API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PolicyConfig is the reimbursement policy threshold table embedded in
// analysis prompts. These are company policy data, not tuning knobs.
type PolicyConfig struct {
	CurrencySymbol       string  `mapstructure:"currency_symbol"`
	MealCap              float64 `mapstructure:"meal_cap"`
	TripCap              float64 `mapstructure:"trip_cap"`
	DailyTransportCap    float64 `mapstructure:"daily_transport_cap"`
	NightlyLodgingCap    float64 `mapstructure:"nightly_lodging_cap"`
	SubmissionWindowDays int     `mapstructure:"submission_window_days"`
	DeclineAlcohol       bool    `mapstructure:"decline_alcohol"`
}

// ReportConfig holds batch report generation configuration
type ReportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
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
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/invoices.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// OpenAI defaults
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.1)
	viper.SetDefault("openai.max_tokens", 1500)
	viper.SetDefault("openai.timeout", 60*time.Second)

	// Policy defaults (company reimbursement policy)
	viper.SetDefault("policy.currency_symbol", "₹")
	viper.SetDefault("policy.meal_cap", 200.0)
	viper.SetDefault("policy.trip_cap", 2000.0)
	viper.SetDefault("policy.daily_transport_cap", 150.0)
	viper.SetDefault("policy.nightly_lodging_cap", 50.0)
	viper.SetDefault("policy.submission_window_days", 30)
	viper.SetDefault("policy.decline_alcohol", true)

	// Report defaults
	viper.SetDefault("report.enabled", true)
	viper.SetDefault("report.output_dir", "reports")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("server.port", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid port number")
	}
	if c.Policy.MealCap < 0 || c.Policy.TripCap < 0 ||
		c.Policy.DailyTransportCap < 0 || c.Policy.NightlyLodgingCap < 0 {
		return fmt.Errorf("policy caps must be non-negative")
	}
	if c.Policy.SubmissionWindowDays <= 0 {
		return fmt.Errorf("policy.submission_window_days must be positive")
	}
	return nil
}
