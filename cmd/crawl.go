package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ats-catalog/feature/ats"
	"ats-catalog/feature/crawl"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adhoc ats.Source

// crawlCmd runs the crawl once and prints the results.
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl sources once and reconcile the catalog",
	Long: `Crawl every configured source once, or a single ad-hoc source given by flags.

Examples:
  # All sources from the sources file
  crawl

  # One ad-hoc source
  crawl --ats join --company Qdrant --careers-url https://join.com/companies/qdrant`,
	RunE: runCrawl,
}

func init() {
	f := crawlCmd.Flags()
	f.StringVar(&adhoc.Ats, "ats", "", "ATS adapter (darwinbox, kekahr, join, oracle_orc)")
	f.StringVar(&adhoc.Company, "company", "", "Company name")
	f.StringVar(&adhoc.CareersURL, "careers-url", "", "Public careers page URL")
	f.StringVar(&adhoc.Endpoint, "endpoint", "", "Explicit API endpoint override")
	f.IntVar(&adhoc.PageSize, "page-size", 0, "Page size for paginated APIs")
	f.IntVar(&adhoc.MaxPages, "pages", 0, "Maximum pages to fetch")
	f.StringVar(&adhoc.Host, "host", "", "Oracle host override")
	f.StringVar(&adhoc.Site, "site", "", "Oracle site number override")

	RootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	var (
		results []crawl.RunResult
		runErr  error
	)
	if adhoc.Ats != "" {
		var res crawl.RunResult
		res, runErr = a.orchestrator.RunSource(ctx, adhoc)
		results = []crawl.RunResult{res}
	} else {
		if len(a.orchestrator.Sources()) == 0 {
			return fmt.Errorf("no sources configured in %s", a.cfg.Crawl.SourcesFile)
		}
		results, runErr = a.orchestrator.RunAll(ctx)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	if runErr != nil {
		a.logger.Warn("Crawl finished with failures", zap.Error(runErr))
		return runErr
	}
	return nil
}
