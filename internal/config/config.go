package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Autentique AutentiqueConfig `mapstructure:"autentique"`
	Agreement  AgreementConfig  `mapstructure:"agreement"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BaseURL      string        `mapstructure:"base_url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// StripeConfig holds payment provider configuration. Sandbox mints mock
// checkout sessions instead of calling Stripe; it is forced when no secret
// key is configured.
type StripeConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	Sandbox   bool          `mapstructure:"sandbox"`
	Currency  string        `mapstructure:"currency"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AutentiqueConfig holds signature provider configuration
type AutentiqueConfig struct {
	Token   string        `mapstructure:"token"`
	BaseURL string        `mapstructure:"base_url"`
	Sandbox bool          `mapstructure:"sandbox"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AgreementConfig holds defaults for the legal-services agreement
type AgreementConfig struct {
	ConsultantName    string `mapstructure:"consultant_name"`
	SignatureLocation string `mapstructure:"signature_location"`
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	SignaturePollInterval time.Duration `mapstructure:"signature_poll_interval"`
	Enabled               bool          `mapstructure:"enabled"`
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

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
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
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	viper.SetDefault("database.path", "data/visa.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Stripe defaults
	viper.SetDefault("stripe.sandbox", false)
	viper.SetDefault("stripe.currency", "usd")
	viper.SetDefault("stripe.timeout", 30*time.Second)

	// Autentique defaults
	viper.SetDefault("autentique.base_url", "https://api.autentique.com.br/v2")
	viper.SetDefault("autentique.sandbox", false)
	viper.SetDefault("autentique.timeout", 30*time.Second)

	// Agreement defaults
	viper.SetDefault("agreement.consultant_name", "Advogados ZR")
	viper.SetDefault("agreement.signature_location", "Lisbon")

	// Storage defaults
	viper.SetDefault("storage.base_dir", "data/files")

	// Worker defaults
	viper.SetDefault("worker.enabled", true)
	viper.SetDefault("worker.signature_poll_interval", time.Minute)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("autentique.token", "AUTENTIQUE_TOKEN")
}

// Validate validates the configuration. Missing provider credentials are
// allowed only when the matching sandbox flag is on; production must never
// fall back to mock providers silently.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	if c.Stripe.SecretKey == "" && !c.Stripe.Sandbox {
		return fmt.Errorf("stripe.secret_key is required unless stripe.sandbox is enabled")
	}
	if c.Autentique.Token == "" && !c.Autentique.Sandbox {
		return fmt.Errorf("autentique.token is required unless autentique.sandbox is enabled")
	}

	return nil
}
