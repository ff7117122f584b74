package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfigNotFound is returned when the config file is not found by Load.
var ErrConfigNotFound = errors.New("configuration file not found")

// Home page content sources
const (
	HomeSourceMetaobject = "metaobject"
	HomeSourceCMS        = "cms"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Commerce CommerceConfig `mapstructure:"commerce"`
	CMS      CMSConfig      `mapstructure:"cms"`
	Content  ContentConfig  `mapstructure:"content"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimit     `mapstructure:"rate_limit"`
}

// RateLimit represents per-client rate limiting configuration
type RateLimit struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	RequestsPerHour   int `mapstructure:"requests_per_hour"`
}

// CommerceConfig points at the storefront GraphQL API
type CommerceConfig struct {
	StoreDomain string        `mapstructure:"store_domain"`
	PublicToken string        `mapstructure:"public_token"`
	APIVersion  string        `mapstructure:"api_version"`
	Language    string        `mapstructure:"language"`
	Country     string        `mapstructure:"country"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CMSConfig points at the headless CMS delivery API
type CMSConfig struct {
	Host          string        `mapstructure:"host"`
	APIKey        string        `mapstructure:"api_key"`
	DeliveryToken string        `mapstructure:"delivery_token"`
	Environment   string        `mapstructure:"environment"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// Enabled reports whether any CMS credentials are configured
func (c CMSConfig) Enabled() bool {
	return c.APIKey != "" || c.DeliveryToken != "" || c.Environment != ""
}

// ContentConfig names the content types and catalog handles pages are built from
type ContentConfig struct {
	HomeSource        string `mapstructure:"home_source"`
	HomeContentType   string `mapstructure:"home_content_type"`
	PagesContentType  string `mapstructure:"pages_content_type"`
	PagesEntryUID     string `mapstructure:"pages_entry_uid"`
	HeaderMenuHandle  string `mapstructure:"header_menu_handle"`
	NewArrivalsHandle string `mapstructure:"new_arrivals_handle"`
	BestSellersHandle string `mapstructure:"best_sellers_handle"`
}

// SessionConfig represents the customer session cookie
type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	Secure     bool          `mapstructure:"secure"`
}

// DatabaseConfig represents the subscriber store. An empty DSN keeps
// subscribers in memory.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SecretsConfig configures keeper:// credential resolution
type SecretsConfig struct {
	KSMConfig string `mapstructure:"ksm_config"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level   string        `mapstructure:"level"`
	Format  string        `mapstructure:"format"`
	File    string        `mapstructure:"file"`
	MaxSize int64         `mapstructure:"max_size"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimit{
				RequestsPerMinute: 120,
				RequestsPerHour:   3000,
			},
		},
		Commerce: CommerceConfig{
			APIVersion: "2024-01",
			Language:   "EN",
			Country:    "US",
			Timeout:    10 * time.Second,
		},
		CMS: CMSConfig{
			Host:     "cdn.contentstack.io",
			Timeout:  10 * time.Second,
			CacheTTL: time.Minute,
		},
		Content: ContentConfig{
			HomeSource:        HomeSourceMetaobject,
			HomeContentType:   "shopify_home",
			PagesContentType:  "pages_shopify",
			PagesEntryUID:     "bltb5740faf62d6dde3",
			HeaderMenuHandle:  "main-menu",
			NewArrivalsHandle: "new-arrivals",
			BestSellersHandle: "womens-fashion",
		},
		Session: SessionConfig{
			CookieName: "session",
			MaxAge:     30 * 24 * time.Hour,
			Secure:     true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "json",
			MaxSize: 10 * 1024 * 1024,
			MaxAge:  7 * 24 * time.Hour,
		},
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports every required setting that is missing or inconsistent
func (c *Config) Validate() error {
	var problems []string

	if c.Commerce.StoreDomain == "" {
		problems = append(problems, "commerce.store_domain (PUBLIC_STORE_DOMAIN) is required")
	}
	if c.Commerce.PublicToken == "" {
		problems = append(problems, "commerce.public_token (PUBLIC_STOREFRONT_API_TOKEN) is required")
	}
	if c.Session.Secret == "" {
		problems = append(problems, "session.secret (SESSION_SECRET) is required")
	}
	if c.CMS.Enabled() && (c.CMS.APIKey == "" || c.CMS.DeliveryToken == "" || c.CMS.Environment == "") {
		problems = append(problems, "cms.api_key, cms.delivery_token and cms.environment must be set together")
	}
	switch c.Content.HomeSource {
	case HomeSourceMetaobject:
	case HomeSourceCMS:
		if !c.CMS.Enabled() {
			problems = append(problems, "content.home_source is cms but no CMS credentials are configured")
		}
	default:
		problems = append(problems, fmt.Sprintf("content.home_source must be %q or %q", HomeSourceMetaobject, HomeSourceCMS))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and variables that are already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from file
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := getConfigDir()
	resolvedConfigFile := configFile

	if configFile == "" || configFile == filepath.Join(configDir, "config.yaml") {
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
		if configFile == "" {
			resolvedConfigFile = filepath.Join(configDir, "config.yaml")
		}
	} else {
		v.SetConfigFile(configFile)
	}

	if _, err := os.Stat(resolvedConfigFile); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployment variables shared with the hosting platform
	_ = v.BindEnv("commerce.store_domain", "STOREFRONT_COMMERCE_STORE_DOMAIN", "PUBLIC_STORE_DOMAIN")
	_ = v.BindEnv("commerce.public_token", "STOREFRONT_COMMERCE_PUBLIC_TOKEN", "PUBLIC_STOREFRONT_API_TOKEN")
	_ = v.BindEnv("session.secret", "STOREFRONT_SESSION_SECRET", "SESSION_SECRET")
	_ = v.BindEnv("cms.api_key", "STOREFRONT_CMS_API_KEY", "CONTENTSTACK_API_KEY")
	_ = v.BindEnv("cms.delivery_token", "STOREFRONT_CMS_DELIVERY_TOKEN", "CONTENTSTACK_DELIVERY_TOKEN")
	_ = v.BindEnv("cms.environment", "STOREFRONT_CMS_ENVIRONMENT", "CONTENTSTACK_ENVIRONMENT")
	_ = v.BindEnv("database.dsn", "STOREFRONT_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("secrets.ksm_config", "STOREFRONT_SECRETS_KSM_CONFIG", "KSM_CONFIG")
	_ = v.BindEnv("server.port", "STOREFRONT_SERVER_PORT", "PORT")
	_ = v.BindEnv("logging.level", "STOREFRONT_LOGGING_LEVEL", "STOREFRONT_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var vfnfError viper.ConfigFileNotFoundError
		if errors.As(err, &vfnfError) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file content: %w", err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Logging.File == "" {
		config.Logging.File = filepath.Join(configDir, "events.log")
	}

	return config, nil
}

// Save saves configuration to file
func (c *Config) Save(configFile string) error {
	if configFile == "" {
		configFile = filepath.Join(getConfigDir(), "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configFile)

	v.Set("server.host", c.Server.Host)
	v.Set("server.port", c.Server.Port)
	v.Set("server.read_timeout", c.Server.ReadTimeout)
	v.Set("server.write_timeout", c.Server.WriteTimeout)
	v.Set("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.Set("server.rate_limit.requests_per_minute", c.Server.RateLimit.RequestsPerMinute)
	v.Set("server.rate_limit.requests_per_hour", c.Server.RateLimit.RequestsPerHour)
	v.Set("commerce.store_domain", c.Commerce.StoreDomain)
	v.Set("commerce.public_token", c.Commerce.PublicToken)
	v.Set("commerce.api_version", c.Commerce.APIVersion)
	v.Set("commerce.language", c.Commerce.Language)
	v.Set("commerce.country", c.Commerce.Country)
	v.Set("commerce.timeout", c.Commerce.Timeout)
	v.Set("cms.host", c.CMS.Host)
	v.Set("cms.api_key", c.CMS.APIKey)
	v.Set("cms.delivery_token", c.CMS.DeliveryToken)
	v.Set("cms.environment", c.CMS.Environment)
	v.Set("cms.timeout", c.CMS.Timeout)
	v.Set("cms.cache_ttl", c.CMS.CacheTTL)
	v.Set("content.home_source", c.Content.HomeSource)
	v.Set("content.home_content_type", c.Content.HomeContentType)
	v.Set("content.pages_content_type", c.Content.PagesContentType)
	v.Set("content.pages_entry_uid", c.Content.PagesEntryUID)
	v.Set("content.header_menu_handle", c.Content.HeaderMenuHandle)
	v.Set("content.new_arrivals_handle", c.Content.NewArrivalsHandle)
	v.Set("content.best_sellers_handle", c.Content.BestSellersHandle)
	v.Set("session.secret", c.Session.Secret)
	v.Set("session.cookie_name", c.Session.CookieName)
	v.Set("session.max_age", c.Session.MaxAge)
	v.Set("session.secure", c.Session.Secure)
	v.Set("database.dsn", c.Database.DSN)
	v.Set("secrets.ksm_config", c.Secrets.KSMConfig)
	v.Set("logging.level", c.Logging.Level)
	v.Set("logging.format", c.Logging.Format)
	v.Set("logging.file", c.Logging.File)
	v.Set("logging.max_size", c.Logging.MaxSize)
	v.Set("logging.max_age", c.Logging.MaxAge)

	return v.WriteConfig()
}

// getConfigDir returns the configuration directory
func getConfigDir() string {
	if configDir := os.Getenv("STOREFRONT_CONFIG_DIR"); configDir != "" {
		return configDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".storefront")
	}

	return filepath.Join(homeDir, ".storefront")
}

// GetConfigDir returns the configuration directory (exported)
func GetConfigDir() string {
	return getConfigDir()
}

// LoadOrCreate loads existing config or creates a new one
func LoadOrCreate(configFile string) (*Config, error) {
	cfg, err := Load(configFile)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	finalConfigFile := configFile
	if finalConfigFile == "" || finalConfigFile == "config.yaml" {
		finalConfigFile = filepath.Join(getConfigDir(), "config.yaml")
	}

	if errSave := DefaultConfig().Save(finalConfigFile); errSave != nil {
		return nil, fmt.Errorf("failed to save default config to %s: %w", finalConfigFile, errSave)
	}

	// Load again so environment overrides apply to the fresh file
	return Load(finalConfigFile)
}
