package youtube

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tubescout/tubescout/internal/models"
)

// Fetcher walks the paginated search results for a request and resolves the
// matched ids into full video records. All-or-nothing: any page failure
// aborts the whole fetch so a partial top-N ranking is never produced.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a fetcher on top of an API client
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchVideos retrieves up to limit videos matching the request, following
// the continuation token across pages and stopping as soon as the limit is
// satisfied to avoid wasting quota
func (f *Fetcher) FetchVideos(ctx context.Context, req models.SearchRequest, limit int) ([]models.VideoRecord, error) {
	seen := make(map[string]bool)
	var ids []string

	pageToken := ""
	for len(ids) < limit {
		pageIDs, nextToken, err := f.client.SearchPage(ctx, req.Query, req.PublishedAfter, pageToken, limit-len(ids))
		if err != nil {
			return nil, err
		}

		for _, id := range pageIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}

		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	logrus.Debugf("Search %q matched %d video ids", req.Query, len(ids))

	if len(ids) == 0 {
		return nil, nil
	}

	videos, err := f.client.VideoDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	// The search endpoint already filters by publishedAfter; enforce the
	// window here as well so stale statistics never leak through.
	filtered := videos[:0]
	for _, v := range videos {
		if v.PublishedAt.Before(req.PublishedAfter) {
			continue
		}
		filtered = append(filtered, v)
	}

	return filtered, nil
}
