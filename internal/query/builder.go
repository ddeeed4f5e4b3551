package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tubescout/tubescout/internal/models"
)

// InvalidInputError reports bad user input. It is never retried and is
// reported to the user immediately.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Builder turns raw user input into immutable search requests
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a query builder using the wall clock
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderWithClock creates a query builder with an injectable clock
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build validates the keyword and window and produces a SearchRequest with
// the published-after cutoff computed in UTC
func (b *Builder) Build(keyword string, mode models.SearchMode, window models.Window, maxResults int) (models.SearchRequest, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return models.SearchRequest{}, &InvalidInputError{Field: "keyword", Reason: "must not be empty"}
	}

	if mode != models.ModeVideos && mode != models.ModeCompetitors {
		return models.SearchRequest{}, &InvalidInputError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}

	if window != models.WindowSevenDays && window != models.WindowThirtyDays {
		return models.SearchRequest{}, &InvalidInputError{Field: "window", Reason: "must be 7 or 30 days"}
	}

	if maxResults < 1 {
		return models.SearchRequest{}, &InvalidInputError{Field: "max_results", Reason: "must be at least 1"}
	}

	now := b.now().UTC()
	return models.SearchRequest{
		ID:             uuid.New().String(),
		Query:          keyword,
		Mode:           mode,
		Window:         window,
		MaxResults:     maxResults,
		PublishedAfter: now.Add(-window.Duration()),
		CreatedAt:      now,
	}, nil
}
