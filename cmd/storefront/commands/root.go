package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/commerce"
	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/internal/secrets"
)

var (
	version    = "dev"
	configFile string
	logLevel   string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Server-rendered storefront",
	Long: `A server-rendered storefront that composes pages from the commerce
platform's Storefront API and a headless CMS.

Credentials come from the config file, the environment (PUBLIC_STORE_DOMAIN,
PUBLIC_STOREFRONT_API_TOKEN, SESSION_SECRET, CONTENTSTACK_*), Docker secrets
or keeper:// references resolved through Keeper Secrets Manager.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the command line with ctx as the base context
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ~/.storefront/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// verboseLog prints a message only if verbose mode is enabled
func verboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// loadConfig reads .env files, the config file, Docker secrets and
// keeper:// references, in that order. create writes a default config file
// when none exists.
func loadConfig(create bool) (*config.Config, error) {
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		return nil, err
	}

	load := config.Load
	if create {
		load = config.LoadOrCreate
	}
	cfg, err := load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.IsRunningInDocker() {
		if applied := config.ApplyDockerSecrets(cfg, config.DockerSecretsPath); len(applied) > 0 {
			verboseLog("applied Docker secrets: %s", strings.Join(applied, ", "))
		}
	}

	resolved, err := secrets.ResolveConfig(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets: %w", err)
	}
	if len(resolved) > 0 {
		verboseLog("resolved keeper:// settings: %s", strings.Join(resolved, ", "))
	}
	return cfg, nil
}

// newLogger builds the console logger. It writes to stderr so stdout stays
// free for command output.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "storefront").Logger()
}

func newCommerceClient(cfg *config.Config) *commerce.Client {
	return commerce.NewClient(commerce.Options{
		StoreDomain: cfg.Commerce.StoreDomain,
		PublicToken: cfg.Commerce.PublicToken,
		APIVersion:  cfg.Commerce.APIVersion,
		Timeout:     cfg.Commerce.Timeout,
		Language:    cfg.Commerce.Language,
		Country:     cfg.Commerce.Country,
	})
}

func newCMSClient(cfg *config.Config) *cms.Client {
	return cms.NewClient(cms.Options{
		Host:          cfg.CMS.Host,
		APIKey:        cfg.CMS.APIKey,
		DeliveryToken: cfg.CMS.DeliveryToken,
		Environment:   cfg.CMS.Environment,
		Timeout:       cfg.CMS.Timeout,
		CacheTTL:      cfg.CMS.CacheTTL,
	})
}
