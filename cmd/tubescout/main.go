package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/batch"
	"github.com/tubescout/tubescout/internal/config"
	"github.com/tubescout/tubescout/internal/export"
	"github.com/tubescout/tubescout/internal/metrics"
	"github.com/tubescout/tubescout/internal/models"
	"github.com/tubescout/tubescout/internal/notify"
	"github.com/tubescout/tubescout/internal/query"
	"github.com/tubescout/tubescout/internal/search"
	"github.com/tubescout/tubescout/internal/storage"
	"github.com/tubescout/tubescout/internal/youtube"
)

func main() {
	quickSearch := flag.String("q", "", "Quick video search with default settings (7-day window)")
	mode := flag.String("mode", "videos", "Search mode: videos or competitors")
	windowDays := flag.Int("window", 7, "Time window in days: 7 or 30")
	maxResults := flag.Int("max", 0, "Maximum results (defaults to MAX_RESULTS)")
	exportFormat := flag.String("export", "", "Export format: csv or json (omit for no export)")
	check := flag.Bool("check", false, "Verify API connectivity and exit")
	runBatch := flag.Bool("batch", false, "Run the configured BATCH_KEYWORDS once and exit")
	serve := flag.Bool("serve", false, "Run as a daemon with scheduled batches and an HTTP control surface")
	flag.Parse()

	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.WarnLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	client := youtube.NewClient(youtube.Options{
		APIKey:            cfg.YouTubeAPIKey,
		RegionCode:        cfg.RegionCode,
		RelevanceLanguage: cfg.RelevanceLanguage,
		Order:             cfg.SearchOrder,
		RetryAttempts:     cfg.RetryAttempts,
		RetryBackoff:      cfg.RetryBackoff,
	})

	weights := metrics.Weights{Engagement: cfg.EngagementWeight, Relevance: cfg.RelevanceWeight}
	service := search.NewService(client, weights)
	builder := query.NewBuilder()
	exporter := export.NewExporter(cfg.ExportDir)

	ctx := context.Background()

	switch {
	case *check:
		os.Exit(runCheck(ctx, builder, service))
	case *serve:
		runDaemon(cfg, builder, service, exporter)
	case *runBatch:
		os.Exit(runBatchOnce(ctx, cfg, builder, service, exporter))
	case *quickSearch != "":
		os.Exit(runOnce(ctx, cfg, builder, service, exporter, *quickSearch,
			models.ModeVideos, models.WindowSevenDays, *maxResults, *exportFormat))
	case flag.NArg() > 0:
		// Non-interactive run: keyword from positional args, settings from flags
		keyword := strings.Join(flag.Args(), " ")
		os.Exit(runOnce(ctx, cfg, builder, service, exporter, keyword,
			models.SearchMode(*mode), models.Window(*windowDays), *maxResults, *exportFormat))
	default:
		runInteractive(ctx, cfg, builder, service, exporter)
	}
}

// runOnce executes a single search and optional export, returning the
// process exit code
func runOnce(ctx context.Context, cfg *config.Config, builder *query.Builder, service *search.Service, exporter *export.Exporter, keyword string, mode models.SearchMode, window models.Window, maxResults int, exportFormat string) int {
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	req, err := builder.Build(keyword, mode, window, maxResults)
	if err != nil {
		reportError(err)
		return 1
	}

	fmt.Printf("Searching for %q in the last %d days...\n", req.Query, req.Window)

	set, err := service.Run(ctx, req)
	if err != nil {
		reportError(err)
		return 1
	}

	if set.Len() == 0 {
		fmt.Println("No results found matching your criteria.")
		return 0
	}

	renderResults(os.Stdout, set)

	if exportFormat != "" {
		if err := doExport(exporter, set, models.ExportFormat(exportFormat)); err != nil {
			reportError(err)
			return 1
		}
	}

	return 0
}

func runBatchOnce(ctx context.Context, cfg *config.Config, builder *query.Builder, service *search.Service, exporter *export.Exporter) int {
	if len(cfg.BatchKeywords) == 0 {
		fmt.Fprintln(os.Stderr, "Error: BATCH_KEYWORDS is not configured")
		return 1
	}

	runner := newRunner(cfg, builder, service, exporter)
	report, err := runner.Run(ctx, cfg.BatchKeywords, models.ModeVideos, models.WindowSevenDays, cfg.MaxResults, models.FormatJSON)
	if err != nil {
		reportError(err)
		return 1
	}

	fmt.Printf("Batch completed: %d succeeded, %d failed, %d records exported\n",
		report.Summary["succeeded"], report.Summary["failed"], report.Summary["records"])
	return 0
}

// runCheck probes the API with a one-result search
func runCheck(ctx context.Context, builder *query.Builder, service *search.Service) int {
	req, err := builder.Build("test", models.ModeVideos, models.WindowThirtyDays, 1)
	if err != nil {
		reportError(err)
		return 1
	}

	if _, err := service.Run(ctx, req); err != nil {
		fmt.Println("API connection failed.")
		reportError(err)
		return 1
	}

	fmt.Println("API connection is working correctly.")
	return 0
}

func newRunner(cfg *config.Config, builder *query.Builder, service *search.Service, exporter *export.Exporter) *batch.Runner {
	var uploader storage.Uploader
	if cfg.StorageAccount != "" {
		u, err := storage.NewAzureUploader(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Errorf("Export upload disabled: %v", err)
		} else {
			uploader = u
		}
	}

	var notifier notify.Notifier
	if cfg.WebhookURL != "" || cfg.NotificationEmail != "" {
		notifier = notify.NewService(cfg)
	}

	return batch.NewRunner(builder, service, exporter, uploader, notifier)
}

func doExport(exporter *export.Exporter, set models.ResultSet, format models.ExportFormat) error {
	artifact, err := exporter.Export(set, format)
	if err != nil {
		return err
	}
	fmt.Printf("Data exported successfully to %s\n", artifact.Path)
	return nil
}

// reportError translates pipeline errors into distinct user-facing messages.
// Nothing here crashes the process; every failure path gets its own report.
func reportError(err error) {
	var invalidErr *query.InvalidInputError
	var quotaErr *youtube.QuotaExceededError
	var fetchErr *youtube.FetchError
	var exportErr *export.ExportError

	switch {
	case errors.As(err, &invalidErr):
		fmt.Fprintf(os.Stderr, "Error: %v\n", invalidErr)
	case errors.As(err, &quotaErr):
		fmt.Fprintln(os.Stderr, "Error: YouTube API daily quota exceeded.")
		fmt.Fprintln(os.Stderr, "Try again tomorrow, or rotate to a different API key.")
	case errors.As(err, &fetchErr):
		fmt.Fprintf(os.Stderr, "Error: could not fetch results: %v\n", fetchErr)
	case errors.As(err, &exportErr):
		fmt.Fprintf(os.Stderr, "Error: %v\n", exportErr)
		fmt.Fprintln(os.Stderr, "Results are still available; try exporting again.")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

// runInteractive drives the prompt-based flow: pick a mode, enter a keyword,
// pick a window, then optionally export
func runInteractive(ctx context.Context, cfg *config.Config, builder *query.Builder, service *search.Service, exporter *export.Exporter) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("TubeScout")
	fmt.Println("  1. Search for top videos")
	fmt.Println("  2. Find best competitors")

	mode := models.ModeVideos
	if promptChoice(reader, "Enter your choice (1-2)", 2) == 2 {
		mode = models.ModeCompetitors
	}

	label := "Search term"
	if mode == models.ModeCompetitors {
		label = "Niche keyword"
	}
	keyword := prompt(reader, label)

	fmt.Println("Time range:")
	fmt.Println("  1. Last 7 days")
	fmt.Println("  2. Last 30 days")

	window := models.WindowSevenDays
	if promptChoice(reader, "Select time range (1-2)", 2) == 2 {
		window = models.WindowThirtyDays
	}

	req, err := builder.Build(keyword, mode, window, cfg.MaxResults)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	fmt.Printf("Searching for %q in the last %d days...\n", req.Query, req.Window)

	set, err := service.Run(ctx, req)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	if set.Len() == 0 {
		fmt.Println("No results found matching your criteria.")
		return
	}

	renderResults(os.Stdout, set)

	fmt.Println("Export options:")
	fmt.Println("  1. Export to CSV")
	fmt.Println("  2. Export to JSON")
	fmt.Println("  3. No export")

	switch promptChoice(reader, "Enter your choice (1-3)", 3) {
	case 1:
		if err := doExport(exporter, set, models.FormatCSV); err != nil {
			reportError(err)
		}
	case 2:
		if err := doExport(exporter, set, models.FormatJSON); err != nil {
			reportError(err)
		}
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptChoice(reader *bufio.Reader, label string, max int) int {
	for {
		answer := prompt(reader, label)
		for i := 1; i <= max; i++ {
			if answer == fmt.Sprintf("%d", i) {
				return i
			}
		}
		fmt.Printf("Invalid choice. Please enter a number between 1 and %d.\n", max)
	}
}
