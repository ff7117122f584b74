package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/composable-commerce/storefront/pkg/types"
)

var (
	subscribersLimit  int
	subscribersOutput string
)

// subscribersCmd represents the subscribers command
var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "List newsletter subscribers",
	Long: `List the newest newsletter subscribers from the configured store.
Requires database.dsn; the in-memory store does not outlive 'serve'.

Examples:
  storefront subscribers --limit 20
  storefront subscribers --output yaml`,
	Args: cobra.NoArgs,
	RunE: runSubscribers,
}

func init() {
	rootCmd.AddCommand(subscribersCmd)

	subscribersCmd.Flags().IntVar(&subscribersLimit, "limit", 50, "maximum number of subscribers")
	subscribersCmd.Flags().StringVarP(&subscribersOutput, "output", "o", formatTable, "output format (table, yaml, json)")
}

func runSubscribers(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(subscribersOutput)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is not set")
	}

	store, err := openSubscribers(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	subs, err := store.List(cmd.Context(), subscribersLimit)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}
	return writeSubscribers(cmd.OutOrStdout(), format, subs)
}

func writeSubscribers(w io.Writer, format string, subs []types.Subscriber) error {
	switch format {
	case formatYAML:
		return writeYAML(w, subs)
	case formatJSON:
		return writeJSON(w, subs)
	}

	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []string{s.Email, s.Source, s.Locale, s.CreatedAt.Local().Format(time.DateTime)})
	}
	writeTable(w, []string{"Email", "Source", "Locale", "Subscribed"}, rows)
	fmt.Fprintf(w, "\n%d subscriber(s)\n", len(subs))
	return nil
}
