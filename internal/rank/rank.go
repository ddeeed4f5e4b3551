package rank

import (
	"sort"

	"github.com/tubescout/tubescout/internal/models"
)

// Videos deduplicates by video id (first occurrence wins), sorts by view
// count descending with like count then id as tie-breaks, and truncates to
// limit. The order is a total order, so ranking is deterministic and
// idempotent.
func Videos(videos []models.VideoRecord, limit int) []models.VideoRecord {
	seen := make(map[string]bool, len(videos))
	ranked := make([]models.VideoRecord, 0, len(videos))
	for _, v := range videos {
		if seen[v.VideoID] {
			continue
		}
		seen[v.VideoID] = true
		ranked = append(ranked, v)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		if a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		return a.VideoID < b.VideoID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Channels deduplicates by channel id, sorts by combined score descending
// with view count then id as tie-breaks, and truncates to limit
func Channels(channels []models.ChannelRecord, limit int) []models.ChannelRecord {
	seen := make(map[string]bool, len(channels))
	ranked := make([]models.ChannelRecord, 0, len(channels))
	for _, c := range channels {
		if seen[c.ChannelID] {
			continue
		}
		seen[c.ChannelID] = true
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.CombinedScore != b.CombinedScore {
			return a.CombinedScore > b.CombinedScore
		}
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		return a.ChannelID < b.ChannelID
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
