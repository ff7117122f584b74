package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/internal/ui"
)

var (
	initForce       bool
	initStoreDomain string
	initToken       string
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with default settings.

Credentials may be left empty and supplied through the environment, or set
to keeper:// references resolved at startup.

Examples:
  # Write ~/.storefront/config.yaml
  storefront init

  # Seed the commerce credentials
  storefront init --store-domain demo.myshopify.com --token keeper://STORE_UID/field/password

  # Replace an existing file without asking
  storefront init --config ./config.yaml --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().StringVar(&initStoreDomain, "store-domain", "", "commerce store domain")
	initCmd.Flags().StringVar(&initToken, "token", "", "storefront API public token or keeper:// reference")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		confirm := ui.NewConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), ui.DefaultDeny(), ui.WithTimeout(time.Minute))
		if !confirm.Confirm(cmd.Context(), fmt.Sprintf("Config file %s already exists. Overwrite?", path)) {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}

	cfg := config.DefaultConfig()
	if initStoreDomain != "" {
		cfg.Commerce.StoreDomain = initStoreDomain
	}
	if initToken != "" {
		cfg.Commerce.PublicToken = initToken
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration written to %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	if cfg.Commerce.StoreDomain == "" || cfg.Commerce.PublicToken == "" {
		fmt.Fprintln(out, "  - set commerce.store_domain and commerce.public_token (or PUBLIC_STORE_DOMAIN and PUBLIC_STOREFRONT_API_TOKEN)")
	}
	fmt.Fprintln(out, "  - set session.secret (or SESSION_SECRET)")
	fmt.Fprintln(out, "  - run 'storefront check' to verify connectivity")
	fmt.Fprintln(out, "  - run 'storefront serve'")
	return nil
}

// configPath is the file --config points at, or the default location
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return filepath.Join(config.GetConfigDir(), "config.yaml")
}
