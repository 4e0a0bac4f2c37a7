// Package config loads application configuration and sets up logging.
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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ImportConfig configures the FamilySearch import pipeline.
type ImportConfig struct {
	ChunkSize   int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	FetchLimit  int    `yaml:"fetch_limit" mapstructure:"fetch_limit"`
	ResourceID  string `yaml:"resource_id" mapstructure:"resource_id"`
	APIURL      string `yaml:"api_url" mapstructure:"api_url"`
	URLTemplate string `yaml:"url_template" mapstructure:"url_template"`
	RulesPath   string `yaml:"rules_path" mapstructure:"rules_path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("INSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("import.chunk_size", 10)
	v.SetDefault("import.fetch_limit", 1000)
	v.SetDefault("import.resource_id", "e106fff5-12bd-4023-bbf6-fbf58faaf1b7")
	v.SetDefault("import.api_url", "https://sg30p0.familysearch.org/service/records/storage/dascloud/das/v2/")
	v.SetDefault("import.url_template", "https://www.familysearch.org/en/records/images/search-results?imageGroupNumbers=%s")

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

// Validate checks that required settings are present for the given mode.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "db":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required (INSPECTOR_STORE_DATABASE_URL)")
		}
	case "serve":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required (INSPECTOR_STORE_DATABASE_URL)")
		}
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Import.ChunkSize < 1 || c.Import.ChunkSize > 100 {
		missing = append(missing, "import.chunk_size must be between 1 and 100")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
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
