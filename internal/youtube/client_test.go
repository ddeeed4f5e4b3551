package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Options{
		APIKey:            "test-key",
		RegionCode:        "US",
		RelevanceLanguage: "en",
		Order:             "viewCount",
		RetryAttempts:     2,
		RetryBackoff:      time.Millisecond,
		BaseURL:           url,
	})
}

func searchBody(token string, ids ...string) map[string]interface{} {
	items := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		items[i] = map[string]interface{}{"id": map[string]string{"videoId": id}}
	}
	body := map[string]interface{}{"items": items}
	if token != "" {
		body["nextPageToken"] = token
	}
	return body
}

func TestClient_SearchPage_SendsFixedFilters(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode(searchBody("", "v1"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	after := time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC)

	ids, token, err := client.SearchPage(context.Background(), "python tutorial", after, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, ids)
	assert.Empty(t, token)

	assert.Equal(t, "python tutorial", gotQuery["q"])
	assert.Equal(t, "video", gotQuery["type"])
	assert.Equal(t, "US", gotQuery["regionCode"])
	assert.Equal(t, "en", gotQuery["relevanceLanguage"])
	assert.Equal(t, "viewCount", gotQuery["order"])
	assert.Equal(t, "2026-08-18T00:00:00Z", gotQuery["publishedAfter"])
	assert.Equal(t, "10", gotQuery["maxResults"])
	assert.Equal(t, "test-key", gotQuery["key"])
}

func TestClient_SearchPage_CapsPageSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
		json.NewEncoder(w).Encode(searchBody(""))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.SearchPage(context.Background(), "q", time.Now(), "", 200)
	require.NoError(t, err)
}

func TestClient_Get_RetriesTransientFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(searchBody("", "v1"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ids, _, err := client.SearchPage(context.Background(), "q", time.Now(), "", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"v1"}, ids)
}

func TestClient_Get_FetchErrorAfterRetriesExhausted(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.SearchPage(context.Background(), "q", time.Now(), "", 5)
	require.Error(t, err)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, calls)
}

func TestClient_Get_QuotaExceededNeverRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"errors":[{"reason":"quotaExceeded"}]}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.SearchPage(context.Background(), "q", time.Now(), "", 5)
	require.Error(t, err)

	var quotaErr *QuotaExceededError
	assert.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 1, calls)
}

func TestClient_Get_NonQuota403IsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"errors":[{"reason":"forbidden"}]}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.SearchPage(context.Background(), "q", time.Now(), "", 5)
	require.Error(t, err)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
}

func TestClient_VideoDetails_ParsesStringCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "snippet,statistics", r.URL.Query().Get("part"))
		assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items":[
			{"id":"v1","snippet":{"title":"First","channelId":"c1","channelTitle":"Chan","publishedAt":"2026-08-20T10:00:00Z"},
			 "statistics":{"viewCount":"1000","likeCount":"60","commentCount":"12"}},
			{"id":"v2","snippet":{"title":"Second","channelId":"c2","channelTitle":"Other","publishedAt":"2026-08-21T10:00:00Z"},
			 "statistics":{"viewCount":"500"}}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	videos, err := client.VideoDetails(context.Background(), []string{"v1", "v2"})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, int64(1000), videos[0].ViewCount)
	assert.Equal(t, int64(60), videos[0].LikeCount)
	assert.Equal(t, int64(12), videos[0].CommentCount)

	// Hidden like counts come back absent and read as zero
	assert.Equal(t, int64(500), videos[1].ViewCount)
	assert.Zero(t, videos[1].LikeCount)
}

func TestClient_ChannelDetails_SplitsLargeBatches(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/channels", r.URL.Path)
		ids := r.URL.Query().Get("id")
		count := 1
		for _, ch := range ids {
			if ch == ',' {
				count++
			}
		}
		batchSizes = append(batchSizes, count)
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i)
	}

	client := newTestClient(server.URL)
	_, err := client.ChannelDetails(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 20}, batchSizes)
}
