package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/composable-commerce/storefront/internal/audit"
)

var (
	eventsTypes     []string
	eventsSeverity  []string
	eventsCustomer  string
	eventsResource  string
	eventsRequestID string
	eventsSince     time.Duration
	eventsLimit     int
	eventsOutput    string
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Search the storefront event log",
	Long: `Read back events written by 'storefront serve': page failures, logins,
cart updates, subscriptions and rate limiting.

Examples:
  # Failed upstream fetches in the last hour
  storefront events --type FETCH_FAILED --since 1h

  # Everything logged for one request
  storefront events --request-id 6f1c0c9e-2d7b-4f0e-9a57-0d1c2b3a4f5e

  # Login activity as JSON
  storefront events --type LOGIN --type LOGIN_FAILED --output json`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringSliceVar(&eventsTypes, "type", nil, "event types to include (repeatable)")
	eventsCmd.Flags().StringSliceVar(&eventsSeverity, "severity", nil, "severities to include (repeatable)")
	eventsCmd.Flags().StringVar(&eventsCustomer, "customer", "", "only events for this customer email")
	eventsCmd.Flags().StringVar(&eventsResource, "resource", "", "only events for this resource (path or upstream query)")
	eventsCmd.Flags().StringVar(&eventsRequestID, "request-id", "", "only events for this request")
	eventsCmd.Flags().DurationVar(&eventsSince, "since", 0, "only events newer than this (e.g. 30m, 24h)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 100, "maximum number of events")
	eventsCmd.Flags().StringVarP(&eventsOutput, "output", "o", formatTable, "output format (table, yaml, json)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(eventsOutput)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	query := eventsQuery(time.Now())
	verboseLog("searching %s", cfg.Logging.File)

	events, err := audit.SearchFile(cfg.Logging.File, query)
	if err != nil {
		return err
	}
	return writeEvents(cmd.OutOrStdout(), format, events)
}

// eventsQuery builds the search from the command flags
func eventsQuery(now time.Time) audit.Query {
	query := audit.Query{
		RequestID: eventsRequestID,
		Limit:     eventsLimit,
	}
	if eventsSince > 0 {
		query.StartTime = now.Add(-eventsSince)
	}
	for _, t := range eventsTypes {
		query.EventTypes = append(query.EventTypes, audit.EventType(strings.ToUpper(t)))
	}
	for _, s := range eventsSeverity {
		query.Severities = append(query.Severities, audit.Severity(strings.ToUpper(s)))
	}
	if eventsCustomer != "" {
		query.Customers = []string{eventsCustomer}
	}
	if eventsResource != "" {
		query.Resources = []string{eventsResource}
	}
	return query
}

func writeEvents(w io.Writer, format string, events []*audit.Event) error {
	switch format {
	case formatYAML:
		return writeYAML(w, events)
	case formatJSON:
		return writeJSON(w, events)
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "No events found")
		return nil
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		detail := e.Error
		if detail == "" {
			detail = e.Action
		}
		rows = append(rows, []string{
			e.Timestamp.Local().Format(time.DateTime),
			string(e.Type),
			string(e.Severity),
			e.Resource,
			e.Customer,
			e.Result,
			detail,
		})
	}
	writeTable(w, []string{"Time", "Type", "Severity", "Resource", "Customer", "Result", "Detail"}, rows)
	return nil
}
