package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/composable-commerce/storefront/internal/audit"
	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/internal/server"
	"github.com/composable-commerce/storefront/internal/session"
	"github.com/composable-commerce/storefront/internal/storage"
)

var (
	serveHost string
	servePort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	Long: `Start the storefront and serve pages until interrupted.

A config file is created with defaults on first run. Required settings can
be supplied through the environment instead of the file.

Examples:
  # Start with the default config
  storefront serve

  # Listen on another port
  storefront serve --port 8080

  # Use a project-local config
  storefront serve --config ./config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := newLogger(cfg.Logging)
	if err := cfg.Validate(); err != nil {
		return err
	}

	events, err := audit.NewLogger(audit.Config{
		FilePath: cfg.Logging.File,
		MaxSize:  cfg.Logging.MaxSize,
		MaxAge:   cfg.Logging.MaxAge,
		Console:  &log,
	})
	if err != nil {
		return fmt.Errorf("failed to create event logger: %w", err)
	}
	defer events.Close()

	commerceClient := newCommerceClient(cfg)
	defer commerceClient.Close()

	var content server.ContentAPI
	if cfg.CMS.Enabled() {
		cmsClient := newCMSClient(cfg)
		defer cmsClient.Close()
		content = cmsClient
	}

	ctx := cmd.Context()
	subscribers, err := openSubscribers(ctx, cfg)
	if err != nil {
		return err
	}
	defer subscribers.Close()

	sessions, err := session.NewStore(cfg.Session.Secret, session.Options{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}

	srv, err := server.New(server.Options{
		Config:      cfg,
		Commerce:    commerceClient,
		Content:     content,
		Subscribers: subscribers,
		Sessions:    sessions,
		Events:      events,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Str("commerce", commerceClient.Endpoint()).
		Bool("cms", content != nil).
		Bool("postgres", cfg.Database.DSN != "").
		Msg("starting storefront")

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openSubscribers picks the subscriber store: Postgres when a DSN is
// configured, memory otherwise.
func openSubscribers(ctx context.Context, cfg *config.Config) (storage.SubscriberStore, error) {
	if cfg.Database.DSN == "" {
		verboseLog("database.dsn is empty; newsletter subscribers are kept in memory")
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.OpenPostgres(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscriber store: %w", err)
	}
	return store, nil
}
