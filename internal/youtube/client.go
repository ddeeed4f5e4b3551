package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/models"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// The Data API caps every paged call at 50 items
	pageSize = 50
)

// Options configures the YouTube Data API client
type Options struct {
	APIKey            string
	RegionCode        string
	RelevanceLanguage string
	Order             string
	RetryAttempts     int
	RetryBackoff      time.Duration

	// BaseURL overrides the API endpoint, used by tests
	BaseURL string
}

// Client wraps the YouTube Data API v3 search, videos and channels endpoints
type Client struct {
	opts   Options
	client *resty.Client
}

// NewClient creates a new YouTube Data API client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	return &Client{
		opts: opts,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "TubeScout/1.0"),
	}
}

type searchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelID    string `json:"channelId"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
			ViewCount       string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Code   int    `json:"code"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// SearchPage executes one search page and returns the video ids it contains
// together with the continuation token for the next page. An empty token
// means the result stream is exhausted.
func (c *Client) SearchPage(ctx context.Context, query string, publishedAfter time.Time, pageToken string, limit int) ([]string, string, error) {
	if limit > pageSize {
		limit = pageSize
	}

	params := map[string]string{
		"part":              "id",
		"q":                 query,
		"type":              "video",
		"maxResults":        strconv.Itoa(limit),
		"regionCode":        c.opts.RegionCode,
		"relevanceLanguage": c.opts.RelevanceLanguage,
		"order":             c.opts.Order,
		"publishedAfter":    publishedAfter.UTC().Format(time.RFC3339),
		"key":               c.opts.APIKey,
	}
	if pageToken != "" {
		params["pageToken"] = pageToken
	}

	body, err := c.get(ctx, "search", params)
	if err != nil {
		return nil, "", err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", &FetchError{Op: "search", Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}

	return ids, resp.NextPageToken, nil
}

// VideoDetails fetches snippet and statistics for a batch of video ids.
// Batches larger than one page are split to stay within the API's id cap.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]models.VideoRecord, error) {
	var videos []models.VideoRecord

	for _, batch := range chunk(ids, pageSize) {
		params := map[string]string{
			"part": "snippet,statistics",
			"id":   strings.Join(batch, ","),
			"key":  c.opts.APIKey,
		}

		body, err := c.get(ctx, "videos", params)
		if err != nil {
			return nil, err
		}

		var resp videosResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &FetchError{Op: "videos", Err: fmt.Errorf("failed to parse response: %w", err)}
		}

		for _, item := range resp.Items {
			publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			if err != nil {
				logrus.Warnf("Skipping video %s with unparseable timestamp %q", item.ID, item.Snippet.PublishedAt)
				continue
			}

			videos = append(videos, models.VideoRecord{
				VideoID:      item.ID,
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				ChannelID:    item.Snippet.ChannelID,
				ChannelTitle: item.Snippet.ChannelTitle,
				PublishedAt:  publishedAt,
				ViewCount:    parseCount(item.Statistics.ViewCount),
				LikeCount:    parseCount(item.Statistics.LikeCount),
				CommentCount: parseCount(item.Statistics.CommentCount),
			})
		}
	}

	return videos, nil
}

// ChannelDetails fetches snippet and lifetime statistics for a batch of
// channel ids, split into page-sized id batches
func (c *Client) ChannelDetails(ctx context.Context, ids []string) ([]models.ChannelRecord, error) {
	var channels []models.ChannelRecord

	for _, batch := range chunk(ids, pageSize) {
		params := map[string]string{
			"part": "snippet,statistics",
			"id":   strings.Join(batch, ","),
			"key":  c.opts.APIKey,
		}

		body, err := c.get(ctx, "channels", params)
		if err != nil {
			return nil, err
		}

		var resp channelsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &FetchError{Op: "channels", Err: fmt.Errorf("failed to parse response: %w", err)}
		}

		for _, item := range resp.Items {
			channels = append(channels, models.ChannelRecord{
				ChannelID:       item.ID,
				ChannelTitle:    item.Snippet.Title,
				SubscriberCount: parseCount(item.Statistics.SubscriberCount),
				VideoCount:      parseCount(item.Statistics.VideoCount),
				ViewCount:       parseCount(item.Statistics.ViewCount),
			})
		}
	}

	return channels, nil
}

// get performs one API call with the configured bounded retry. Transient
// failures (network errors, 429, 5xx) are retried with backoff; a quota
// rejection aborts immediately and is never retried.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	url := c.opts.BaseURL + "/" + endpoint

	var lastErr error
	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.opts.RetryBackoff * time.Duration(1<<(attempt-2))
			logrus.Debugf("Retrying %s after %v (attempt %d/%d)", endpoint, backoff, attempt, c.opts.RetryAttempts)
			select {
			case <-ctx.Done():
				return nil, &FetchError{Op: endpoint, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(url)

		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode() == 200:
			return resp.Body(), nil
		case isQuotaExceeded(resp):
			return nil, &QuotaExceededError{Op: endpoint}
		case resp.StatusCode() == 429 || resp.StatusCode() >= 500:
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode(), truncateBody(resp.Body()))
			continue
		default:
			return nil, &FetchError{
				Op:         endpoint,
				StatusCode: resp.StatusCode(),
				Err:        fmt.Errorf("%s", truncateBody(resp.Body())),
			}
		}
	}

	return nil, &FetchError{Op: endpoint, Err: fmt.Errorf("retries exhausted: %w", lastErr)}
}

func isQuotaExceeded(resp *resty.Response) bool {
	if resp.StatusCode() != 403 {
		return false
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil {
		for _, e := range apiErr.Error.Errors {
			if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" {
				return true
			}
		}
	}

	return strings.Contains(string(resp.Body()), "quotaExceeded")
}

// parseCount converts the API's string counters, absent or malformed
// counters read as zero
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		batches = append(batches, ids[:n])
		ids = ids[n:]
	}
	return batches
}

func truncateBody(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
