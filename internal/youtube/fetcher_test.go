package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tubescout/tubescout/internal/models"
)

// fakeAPI serves canned search pages plus a videos endpoint that fabricates
// details for whatever ids are asked for
type fakeAPI struct {
	pages       []map[string]interface{}
	searchCalls int
	publishedAt string
	failPage    int // 1-based page index that answers with a quota rejection
}

func (f *fakeAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			f.searchCalls++
			if f.failPage > 0 && f.searchCalls == f.failPage {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"error":{"code":403,"errors":[{"reason":"quotaExceeded"}]}}`)
				return
			}
			page := f.pages[f.searchCalls-1]
			json.NewEncoder(w).Encode(page)
		case "/videos":
			ids := strings.Split(r.URL.Query().Get("id"), ",")
			items := make([]map[string]interface{}, len(ids))
			for i, id := range ids {
				items[i] = map[string]interface{}{
					"id": id,
					"snippet": map[string]string{
						"title":        "Video " + id,
						"channelId":    "chan-" + id,
						"channelTitle": "Channel " + id,
						"publishedAt":  f.publishedAt,
					},
					"statistics": map[string]string{
						"viewCount": "100", "likeCount": "10", "commentCount": "1",
					},
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
		default:
			http.NotFound(w, r)
		}
	}
}

func testRequest(max int) models.SearchRequest {
	return models.SearchRequest{
		ID:             "req-1",
		Query:          "python tutorial",
		Mode:           models.ModeVideos,
		Window:         models.WindowSevenDays,
		MaxResults:     max,
		PublishedAfter: time.Now().UTC().Add(-7 * 24 * time.Hour),
	}
}

func TestFetcher_FollowsContinuationToken(t *testing.T) {
	api := &fakeAPI{
		pages: []map[string]interface{}{
			searchBody("page2", "v1", "v2"),
			searchBody("", "v3"),
		},
		publishedAt: time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL))
	videos, err := fetcher.FetchVideos(context.Background(), testRequest(10), 10)
	require.NoError(t, err)

	assert.Len(t, videos, 3)
	assert.Equal(t, 2, api.searchCalls)
}

func TestFetcher_StopsAtLimit(t *testing.T) {
	api := &fakeAPI{
		pages: []map[string]interface{}{
			searchBody("page2", "v1", "v2", "v3"),
			searchBody("page3", "v4"),
		},
		publishedAt: time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL))
	videos, err := fetcher.FetchVideos(context.Background(), testRequest(3), 3)
	require.NoError(t, err)

	// Limit satisfied on page 1, so no further quota is spent
	assert.Len(t, videos, 3)
	assert.Equal(t, 1, api.searchCalls)
}

func TestFetcher_NeverReturnsDuplicateIDs(t *testing.T) {
	api := &fakeAPI{
		pages: []map[string]interface{}{
			searchBody("page2", "v1", "v2"),
			searchBody("", "v2", "v3"),
		},
		publishedAt: time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL))
	videos, err := fetcher.FetchVideos(context.Background(), testRequest(10), 10)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, v := range videos {
		assert.False(t, seen[v.VideoID], "duplicate id %s", v.VideoID)
		seen[v.VideoID] = true
	}
	assert.Len(t, videos, 3)
}

func TestFetcher_QuotaFailureMidFetchDiscardsPartialPages(t *testing.T) {
	api := &fakeAPI{
		pages: []map[string]interface{}{
			searchBody("page2", "v1", "v2"),
			nil, // replaced by the quota rejection
		},
		failPage:    2,
		publishedAt: time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL))
	videos, err := fetcher.FetchVideos(context.Background(), testRequest(10), 10)

	require.Error(t, err)
	var quotaErr *QuotaExceededError
	assert.ErrorAs(t, err, &quotaErr)
	assert.Nil(t, videos)
}

func TestFetcher_FiltersVideosOutsideWindow(t *testing.T) {
	// The stub dates every video outside the window, so nothing survives
	api := &fakeAPI{
		pages: []map[string]interface{}{
			searchBody("", "v1", "v2"),
		},
		publishedAt: time.Now().UTC().Add(-30 * 24 * time.Hour).Format(time.RFC3339),
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL))
	videos, err := fetcher.FetchVideos(context.Background(), testRequest(10), 10)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestFetcher_EmptyResults(t *testing.T) {
	api := &fakeAPI{
		pages: []map[string]interface{}{searchBody("")},
	}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	fetcher := NewFetcher(newTestClient(server.URL))
	videos, err := fetcher.FetchVideos(context.Background(), testRequest(10), 10)
	require.NoError(t, err)
	assert.Empty(t, videos)
}
