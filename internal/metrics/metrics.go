package metrics

import "github.com/tubescout/tubescout/internal/models"

// Rating thresholds for the like-to-view percentage. Both boundaries are
// inclusive: a score of exactly 5.0 is HIGH, exactly 2.0 is GOOD.
const (
	HighThreshold = 5.0
	GoodThreshold = 2.0
)

// Weights tunes the competitor scoring formula. The exact split is a
// configuration knob, not a contract; both weights must be non-negative.
type Weights struct {
	Engagement float64
	Relevance  float64
}

// DefaultWeights favors engagement over result-share relevance
var DefaultWeights = Weights{Engagement: 0.7, Relevance: 0.3}

// PerformanceScore returns the like-to-view ratio as a percentage. A video
// nobody has watched scores zero rather than dividing by zero.
func PerformanceScore(viewCount, likeCount int64) float64 {
	if viewCount <= 0 {
		return 0
	}
	return float64(likeCount) / float64(viewCount) * 100
}

// Rate buckets a performance score
func Rate(score float64) models.PerformanceRating {
	switch {
	case score >= HighThreshold:
		return models.RatingHigh
	case score >= GoodThreshold:
		return models.RatingGood
	default:
		return models.RatingLow
	}
}

// ScoreVideos fills in the derived performance fields on each record
func ScoreVideos(videos []models.VideoRecord) {
	for i := range videos {
		videos[i].PerformanceScore = PerformanceScore(videos[i].ViewCount, videos[i].LikeCount)
		videos[i].PerformanceRating = Rate(videos[i].PerformanceScore)
	}
}

// ChannelAggregate accumulates the statistics of the videos a channel placed
// in one set of search results
type ChannelAggregate struct {
	ChannelID     string
	Appearances   int
	TotalViews    int64
	TotalLikes    int64
	TotalComments int64
}

// AggregateChannels groups search-result videos by channel, preserving the
// order in which channels first appeared
func AggregateChannels(videos []models.VideoRecord) []ChannelAggregate {
	index := make(map[string]int)
	var aggs []ChannelAggregate

	for _, v := range videos {
		if v.ChannelID == "" {
			continue
		}
		i, ok := index[v.ChannelID]
		if !ok {
			i = len(aggs)
			index[v.ChannelID] = i
			aggs = append(aggs, ChannelAggregate{ChannelID: v.ChannelID})
		}
		aggs[i].Appearances++
		aggs[i].TotalViews += v.ViewCount
		aggs[i].TotalLikes += v.LikeCount
		aggs[i].TotalComments += v.CommentCount
	}

	return aggs
}

// ScoreChannel derives engagement, relevance and the weighted combined score
// for a channel from its aggregate. Channels with zero views or zero
// subscribers score zero instead of crashing.
func ScoreChannel(ch *models.ChannelRecord, agg ChannelAggregate, videosExamined int, w Weights) {
	ch.VideosInResults = agg.Appearances

	if agg.TotalViews > 0 {
		ch.EngagementScore = float64(agg.TotalLikes+agg.TotalComments) / float64(agg.TotalViews)
	} else {
		ch.EngagementScore = 0
	}

	if videosExamined > 0 {
		ch.RelevanceScore = float64(agg.Appearances) / float64(videosExamined)
	} else {
		ch.RelevanceScore = 0
	}

	ch.CombinedScore = w.Engagement*ch.EngagementScore + w.Relevance*ch.RelevanceScore
}
