package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Classify ClassifyConfig `mapstructure:"classify"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // "sqlite" or "postgres"
	Path            string        `mapstructure:"path"`   // sqlite file path
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

// ScrapeConfig drives the ingestion pipeline. All values are immutable
// per-run inputs; changing them never affects a run already in flight.
type ScrapeConfig struct {
	Keywords           []string      `mapstructure:"keywords"`
	Location           string        `mapstructure:"location"`
	MaxPages           int           `mapstructure:"max_pages"`
	MaxParallelSources int           `mapstructure:"max_parallel_sources"`
	Workers            int           `mapstructure:"workers"` // per-source listing workers
	RequestInterval    time.Duration `mapstructure:"request_interval"`
	RequestJitter      float64       `mapstructure:"request_jitter"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RetryBase          time.Duration `mapstructure:"retry_base"`
	RetryCount         int           `mapstructure:"retry_count"`
	CoolDown           time.Duration `mapstructure:"cool_down"`
	RunTimeout         time.Duration `mapstructure:"run_timeout"`
	StalenessWindow    time.Duration `mapstructure:"staleness_window"`
	Schedule           string        `mapstructure:"schedule"` // cron spec for daemon mode
}

type SourcesConfig struct {
	Indeed   SourceConfig `mapstructure:"indeed"`
	LinkedIn SourceConfig `mapstructure:"linkedin"`
}

type SourceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ClassifyConfig struct {
	RelevanceTerms []string `mapstructure:"relevance_terms"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/jobradar.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("scrape.keywords", []string{"marketing junior", "digital marketing", "marketing executive"})
	v.SetDefault("scrape.location", "Vietnam")
	v.SetDefault("scrape.max_pages", 3)
	v.SetDefault("scrape.max_parallel_sources", 2)
	v.SetDefault("scrape.workers", 4)
	v.SetDefault("scrape.request_interval", 3*time.Second)
	v.SetDefault("scrape.request_jitter", 0.3)
	v.SetDefault("scrape.request_timeout", 30*time.Second)
	v.SetDefault("scrape.retry_base", 2*time.Second)
	v.SetDefault("scrape.retry_count", 3)
	v.SetDefault("scrape.cool_down", time.Hour)
	v.SetDefault("scrape.run_timeout", 30*time.Minute)
	v.SetDefault("scrape.staleness_window", 7*24*time.Hour)
	v.SetDefault("scrape.schedule", "@every 24h")
	v.SetDefault("sources.indeed.enabled", true)
	v.SetDefault("sources.linkedin.enabled", true)
	v.SetDefault("classify.relevance_terms", []string{
		"marketing", "digital marketing", "content marketing", "social media",
		"seo", "sem", "brand", "advertising", "communication",
	})

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("server.port", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// EnabledSources returns the names of sources switched on in configuration.
func (c *Config) EnabledSources() []string {
	var names []string
	if c.Sources.Indeed.Enabled {
		names = append(names, "indeed")
	}
	if c.Sources.LinkedIn.Enabled {
		names = append(names, "linkedin")
	}
	return names
}
