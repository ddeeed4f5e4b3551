package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/models"
)

// ExportError reports a filesystem failure during export. The ranked results
// stay in memory, so the caller can re-export or render them on screen.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

var videoFields = []string{
	"video_id", "title", "channel_title", "published_date", "published_at",
	"view_count", "like_count", "comment_count", "performance_score",
	"performance_rating",
}

var channelFields = []string{
	"channel_id", "channel_title", "subscriber_count",
	"video_count", "view_count", "engagement_score", "relevance_score",
}

// videoRow mirrors the CSV column order for JSON exports, adding the
// human-readable date alongside the RFC3339 timestamp
type videoRow struct {
	VideoID           string  `json:"video_id"`
	Title             string  `json:"title"`
	ChannelTitle      string  `json:"channel_title"`
	PublishedDate     string  `json:"published_date"`
	PublishedAt       string  `json:"published_at"`
	ViewCount         int64   `json:"view_count"`
	LikeCount         int64   `json:"like_count"`
	CommentCount      int64   `json:"comment_count"`
	PerformanceScore  float64 `json:"performance_score"`
	PerformanceRating string  `json:"performance_rating"`
}

type channelRow struct {
	ChannelID       string  `json:"channel_id"`
	ChannelTitle    string  `json:"channel_title"`
	SubscriberCount int64   `json:"subscriber_count"`
	VideoCount      int64   `json:"video_count"`
	ViewCount       int64   `json:"view_count"`
	EngagementScore float64 `json:"engagement_score"`
	RelevanceScore  float64 `json:"relevance_score"`
}

// Exporter writes ranked result sets to timestamped files in a fixed
// output directory
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an exporter targeting dir
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// NewExporterWithClock creates an exporter with an injectable clock
func NewExporterWithClock(dir string, now func() time.Time) *Exporter {
	return &Exporter{dir: dir, now: now}
}

// Export serializes the result set in the requested format. The file is
// written to a temporary path and renamed into place, so a failed export
// never leaves a partial file behind.
func (e *Exporter) Export(set models.ResultSet, format models.ExportFormat) (models.ExportArtifact, error) {
	if format != models.FormatCSV && format != models.FormatJSON {
		return models.ExportArtifact{}, &ExportError{Err: fmt.Errorf("unknown format %q", format)}
	}

	createdAt := e.now()
	prefix := "video"
	if set.Request.Mode == models.ModeCompetitors {
		prefix = "competitor"
	}
	filename := fmt.Sprintf("%s_%s.%s", prefix, createdAt.Format("20060102_150405"), format)
	path := filepath.Join(e.dir, filename)

	var data []byte
	var err error
	switch format {
	case models.FormatCSV:
		data, err = e.marshalCSV(set)
	case models.FormatJSON:
		data, err = e.marshalJSON(set)
	}
	if err != nil {
		return models.ExportArtifact{}, &ExportError{Path: path, Err: err}
	}

	if err := writeAtomic(path, data); err != nil {
		return models.ExportArtifact{}, &ExportError{Path: path, Err: err}
	}

	logrus.Infof("Exported %d records to %s", set.Len(), path)

	return models.ExportArtifact{
		Path:        path,
		Format:      format,
		RecordCount: set.Len(),
		CreatedAt:   createdAt,
	}, nil
}

func (e *Exporter) marshalCSV(set models.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if set.Request.Mode == models.ModeCompetitors {
		if err := w.Write(channelFields); err != nil {
			return nil, err
		}
		for _, c := range set.Channels {
			row := []string{
				c.ChannelID,
				c.ChannelTitle,
				strconv.FormatInt(c.SubscriberCount, 10),
				strconv.FormatInt(c.VideoCount, 10),
				strconv.FormatInt(c.ViewCount, 10),
				formatScore(c.EngagementScore),
				formatScore(c.RelevanceScore),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	} else {
		if err := w.Write(videoFields); err != nil {
			return nil, err
		}
		for _, v := range set.Videos {
			row := []string{
				v.VideoID,
				v.Title,
				v.ChannelTitle,
				humanDate(v.PublishedAt),
				v.PublishedAt.UTC().Format(time.RFC3339),
				strconv.FormatInt(v.ViewCount, 10),
				strconv.FormatInt(v.LikeCount, 10),
				strconv.FormatInt(v.CommentCount, 10),
				formatScore(v.PerformanceScore),
				string(v.PerformanceRating),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) marshalJSON(set models.ResultSet) ([]byte, error) {
	if set.Request.Mode == models.ModeCompetitors {
		rows := make([]channelRow, 0, len(set.Channels))
		for _, c := range set.Channels {
			rows = append(rows, channelRow{
				ChannelID:       c.ChannelID,
				ChannelTitle:    c.ChannelTitle,
				SubscriberCount: c.SubscriberCount,
				VideoCount:      c.VideoCount,
				ViewCount:       c.ViewCount,
				EngagementScore: c.EngagementScore,
				RelevanceScore:  c.RelevanceScore,
			})
		}
		return json.MarshalIndent(rows, "", "  ")
	}

	rows := make([]videoRow, 0, len(set.Videos))
	for _, v := range set.Videos {
		rows = append(rows, videoRow{
			VideoID:           v.VideoID,
			Title:             v.Title,
			ChannelTitle:      v.ChannelTitle,
			PublishedDate:     humanDate(v.PublishedAt),
			PublishedAt:       v.PublishedAt.UTC().Format(time.RFC3339),
			ViewCount:         v.ViewCount,
			LikeCount:         v.LikeCount,
			CommentCount:      v.CommentCount,
			PerformanceScore:  v.PerformanceScore,
			PerformanceRating: string(v.PerformanceRating),
		})
	}
	return json.MarshalIndent(rows, "", "  ")
}

// ExportBatchReport writes a batch summary report as JSON into the export
// directory
func (e *Exporter) ExportBatchReport(report *models.BatchReport) (models.ExportArtifact, error) {
	createdAt := e.now()
	filename := fmt.Sprintf("batch_summary_%s.json", createdAt.Format("20060102_150405"))
	path := filepath.Join(e.dir, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return models.ExportArtifact{}, &ExportError{Path: path, Err: err}
	}

	if err := writeAtomic(path, data); err != nil {
		return models.ExportArtifact{}, &ExportError{Path: path, Err: err}
	}

	return models.ExportArtifact{
		Path:        path,
		Format:      models.FormatJSON,
		RecordCount: len(report.Queries),
		CreatedAt:   createdAt,
	}, nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tubescout-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// humanDate renders a timestamp as DD/MM/YYYY
func humanDate(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
