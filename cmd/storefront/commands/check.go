package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/composable-commerce/storefront/internal/cms"
	"github.com/composable-commerce/storefront/internal/config"
	"github.com/composable-commerce/storefront/pkg/types"
)

var checkTimeout time.Duration

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration and upstream connectivity",
	Long: `Validate the configuration and reach the commerce API, the CMS and the
subscriber store. Exits non-zero when any check fails.

Examples:
  storefront check
  storefront check --timeout 30s --verbose`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "overall timeout for the checks")
}

type shopProber interface {
	Shop(ctx context.Context) (types.Shop, error)
}

type entryProber interface {
	FetchEntry(ctx context.Context, contentType string) (cms.Entry, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// probe is one named connectivity check. A nil run marks it disabled.
type probe struct {
	name string
	run  func(ctx context.Context) (string, error)
}

type probeResult struct {
	Name   string
	Status string
	Detail string
	Took   time.Duration
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	commerceClient := newCommerceClient(cfg)
	defer commerceClient.Close()

	var content entryProber
	if cfg.CMS.Enabled() {
		cmsClient := newCMSClient(cfg)
		defer cmsClient.Close()
		content = cmsClient
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	var store pinger
	if cfg.Database.DSN != "" {
		s, err := openSubscribers(ctx, cfg)
		if err != nil {
			verboseLog("subscriber store: %v", err)
			store = failedPinger{err}
		} else {
			defer s.Close()
			store = s
		}
	}

	results := runProbes(ctx, checkProbes(cfg, commerceClient, content, store))
	return reportProbes(cmd.OutOrStdout(), results)
}

type failedPinger struct{ err error }

func (p failedPinger) Ping(context.Context) error { return p.err }

func checkProbes(cfg *config.Config, shop shopProber, content entryProber, store pinger) []probe {
	probes := []probe{
		{name: "config", run: func(context.Context) (string, error) {
			if err := cfg.Validate(); err != nil {
				return "", err
			}
			return configPath(), nil
		}},
		{name: "commerce", run: func(ctx context.Context) (string, error) {
			s, err := shop.Shop(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)", s.Name, s.PrimaryDomain.URL), nil
		}},
		{name: "cms"},
		{name: "subscribers"},
	}
	if content != nil {
		probes[2].run = func(ctx context.Context) (string, error) {
			entry, err := content.FetchEntry(ctx, cfg.Content.HomeContentType)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s entry %s", cfg.Content.HomeContentType, entry.UID), nil
		}
	}
	if store != nil {
		probes[3].run = func(ctx context.Context) (string, error) {
			return "postgres", store.Ping(ctx)
		}
	}
	return probes
}

// runProbes runs every probe concurrently and keeps their order
func runProbes(ctx context.Context, probes []probe) []probeResult {
	results := make([]probeResult, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		if p.run == nil {
			results[i] = probeResult{Name: p.name, Status: "disabled"}
			continue
		}
		i, p := i, p
		g.Go(func() error {
			start := time.Now()
			detail, err := p.run(ctx)
			res := probeResult{Name: p.name, Status: "ok", Detail: detail, Took: time.Since(start)}
			if err != nil {
				res.Status = "failed"
				res.Detail = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func reportProbes(w io.Writer, results []probeResult) error {
	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		took := ""
		if r.Took > 0 {
			took = r.Took.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{r.Name, r.Status, took, r.Detail})
		if r.Status == "failed" {
			failed++
		}
	}
	writeTable(w, []string{"Check", "Status", "Took", "Detail"}, rows)

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	fmt.Fprintln(w, "\nAll checks passed")
	return nil
}
