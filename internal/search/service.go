package search

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/metrics"
	"github.com/tubescout/tubescout/internal/models"
	"github.com/tubescout/tubescout/internal/rank"
	"github.com/tubescout/tubescout/internal/youtube"
)

// Fetcher retrieves videos matching a search request
type Fetcher interface {
	FetchVideos(ctx context.Context, req models.SearchRequest, limit int) ([]models.VideoRecord, error)
}

// ChannelLister resolves channel ids into channel records with statistics
type ChannelLister interface {
	ChannelDetails(ctx context.Context, ids []string) ([]models.ChannelRecord, error)
}

// Service runs the search-and-ranking pipeline: fetch, score, rank
type Service struct {
	fetcher  Fetcher
	channels ChannelLister
	weights  metrics.Weights

	mu    sync.RWMutex
	stats Stats
}

// Stats holds run statistics for the service
type Stats struct {
	RunCount        int       `json:"run_count"`
	ErrorCount      int       `json:"error_count"`
	QuotaErrorCount int       `json:"quota_error_count"`
	LastRun         time.Time `json:"last_run"`
	LastRunDuration string    `json:"last_run_duration"`
	LastQuery       string    `json:"last_query"`
}

// NewService creates a search service on top of a YouTube API client
func NewService(client *youtube.Client, weights metrics.Weights) *Service {
	return NewServiceWith(youtube.NewFetcher(client), client, weights)
}

// NewServiceWith creates a search service with explicit collaborators,
// used by tests
func NewServiceWith(fetcher Fetcher, channels ChannelLister, weights metrics.Weights) *Service {
	return &Service{
		fetcher:  fetcher,
		channels: channels,
		weights:  weights,
	}
}

// Run executes the request and returns its ranked result set. Fetching is
// all-or-nothing: any page failure aborts the run and no partial set is
// produced.
func (s *Service) Run(ctx context.Context, req models.SearchRequest) (models.ResultSet, error) {
	start := time.Now()
	logrus.Infof("Running %s search %s for %q (window: %d days, max: %d)",
		req.Mode, req.ID, req.Query, req.Window, req.MaxResults)

	var set models.ResultSet
	var err error
	switch req.Mode {
	case models.ModeCompetitors:
		set, err = s.competitors(ctx, req)
	default:
		set, err = s.topVideos(ctx, req)
	}

	s.recordRun(req, time.Since(start), err)

	if err != nil {
		logrus.Errorf("Search %s failed: %v", req.ID, err)
		return models.ResultSet{}, err
	}

	logrus.Infof("Search %s completed with %d records in %v", req.ID, set.Len(), time.Since(start))
	return set, nil
}

func (s *Service) topVideos(ctx context.Context, req models.SearchRequest) (models.ResultSet, error) {
	videos, err := s.fetcher.FetchVideos(ctx, req, req.MaxResults)
	if err != nil {
		return models.ResultSet{}, err
	}

	metrics.ScoreVideos(videos)

	return models.ResultSet{
		Request: req,
		Videos:  rank.Videos(videos, req.MaxResults),
	}, nil
}

func (s *Service) competitors(ctx context.Context, req models.SearchRequest) (models.ResultSet, error) {
	// Search twice as many videos as requested channels so niches dominated
	// by a few channels still surface enough distinct candidates
	videos, err := s.fetcher.FetchVideos(ctx, req, 2*req.MaxResults)
	if err != nil {
		return models.ResultSet{}, err
	}

	aggs := metrics.AggregateChannels(videos)
	if len(aggs) == 0 {
		return models.ResultSet{Request: req}, nil
	}

	ids := make([]string, 0, len(aggs))
	byID := make(map[string]metrics.ChannelAggregate, len(aggs))
	for _, agg := range aggs {
		ids = append(ids, agg.ChannelID)
		byID[agg.ChannelID] = agg
	}

	channels, err := s.channels.ChannelDetails(ctx, ids)
	if err != nil {
		return models.ResultSet{}, err
	}

	for i := range channels {
		agg, ok := byID[channels[i].ChannelID]
		if !ok {
			continue
		}
		metrics.ScoreChannel(&channels[i], agg, len(videos), s.weights)
	}

	return models.ResultSet{
		Request:  req,
		Channels: rank.Channels(channels, req.MaxResults),
	}, nil
}

func (s *Service) recordRun(req models.SearchRequest, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.RunCount++
	s.stats.LastRun = time.Now()
	s.stats.LastRunDuration = duration.String()
	s.stats.LastQuery = req.Query

	if err != nil {
		s.stats.ErrorCount++
		var quotaErr *youtube.QuotaExceededError
		if errors.As(err, &quotaErr) {
			s.stats.QuotaErrorCount++
		}
	}
}

// GetStats returns current run statistics as JSON
func (s *Service) GetStats() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.stats, "", "  ")
	return string(data)
}
