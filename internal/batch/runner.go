package batch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/models"
	"github.com/tubescout/tubescout/internal/notify"
	"github.com/tubescout/tubescout/internal/query"
	"github.com/tubescout/tubescout/internal/storage"
)

// Searcher runs one search request to completion
type Searcher interface {
	Run(ctx context.Context, req models.SearchRequest) (models.ResultSet, error)
}

// Exporter serializes result sets and batch reports
type Exporter interface {
	Export(set models.ResultSet, format models.ExportFormat) (models.ExportArtifact, error)
	ExportBatchReport(report *models.BatchReport) (models.ExportArtifact, error)
}

// Runner executes a list of keywords sequentially, exporting each result set
// and producing a summary report. Keywords are independent: one failing
// query is recorded and the batch moves on.
type Runner struct {
	builder  *query.Builder
	searcher Searcher
	exporter Exporter
	uploader storage.Uploader // optional
	notifier notify.Notifier  // optional

	// Delay between queries, to stay friendly to the provider
	Delay time.Duration
}

// NewRunner creates a batch runner. uploader and notifier may be nil.
func NewRunner(builder *query.Builder, searcher Searcher, exporter Exporter, uploader storage.Uploader, notifier notify.Notifier) *Runner {
	return &Runner{
		builder:  builder,
		searcher: searcher,
		exporter: exporter,
		uploader: uploader,
		notifier: notifier,
		Delay:    time.Second,
	}
}

// Run processes every keyword and returns the batch report. The report is
// also exported as JSON next to the per-query exports.
func (r *Runner) Run(ctx context.Context, keywords []string, mode models.SearchMode, window models.Window, maxResults int, format models.ExportFormat) (*models.BatchReport, error) {
	logrus.Infof("Batch processing %d keywords (%s mode, %d-day window)", len(keywords), mode, window)

	report := &models.BatchReport{
		GeneratedAt: time.Now().UTC(),
		Mode:        mode,
		Window:      window,
		Summary:     make(map[string]int),
	}

	for i, keyword := range keywords {
		if i > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(r.Delay):
			}
		}

		logrus.Infof("[%d/%d] Searching for %q", i+1, len(keywords), keyword)

		result := r.runOne(ctx, keyword, mode, window, maxResults, format, report)
		report.Queries = append(report.Queries, result)
		if result.Error == "" {
			report.Summary["succeeded"]++
			report.Summary["records"] += result.RecordCount
		} else {
			report.Summary["failed"]++
		}
	}

	if artifact, err := r.exporter.ExportBatchReport(report); err != nil {
		logrus.Errorf("Failed to export batch summary: %v", err)
	} else {
		report.Artifacts = append(report.Artifacts, artifact)
		r.upload(artifact)
	}

	if r.notifier != nil {
		if err := r.notifier.SendReport(report); err != nil {
			logrus.Errorf("Failed to send batch report: %v", err)
		}
	}

	logrus.Infof("Batch completed: %d succeeded, %d failed", report.Summary["succeeded"], report.Summary["failed"])
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, keyword string, mode models.SearchMode, window models.Window, maxResults int, format models.ExportFormat, report *models.BatchReport) models.BatchQueryResult {
	req, err := r.builder.Build(keyword, mode, window, maxResults)
	if err != nil {
		return models.BatchQueryResult{Query: keyword, Error: err.Error()}
	}

	set, err := r.searcher.Run(ctx, req)
	if err != nil {
		return models.BatchQueryResult{Query: keyword, Error: err.Error()}
	}

	if set.Len() == 0 {
		logrus.Warnf("No results for %q", keyword)
		return models.BatchQueryResult{Query: keyword}
	}

	artifact, err := r.exporter.Export(set, format)
	if err != nil {
		logrus.Errorf("Export for %q failed: %v", keyword, err)
		return models.BatchQueryResult{Query: keyword, RecordCount: set.Len(), Error: err.Error()}
	}

	report.Artifacts = append(report.Artifacts, artifact)
	r.upload(artifact)

	return models.BatchQueryResult{Query: keyword, RecordCount: artifact.RecordCount}
}

func (r *Runner) upload(artifact models.ExportArtifact) {
	if r.uploader == nil {
		return
	}

	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		logrus.Errorf("Failed to read %s for upload: %v", artifact.Path, err)
		return
	}

	if err := r.uploader.Upload(filepath.Base(artifact.Path), data); err != nil {
		logrus.Errorf("Failed to upload %s: %v", artifact.Path, err)
	}
}
