package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tubescout/tubescout/internal/models"
)

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name      string
		viewCount int64
		likeCount int64
		expected  float64
	}{
		{name: "excellent engagement", viewCount: 1000, likeCount: 60, expected: 6.0},
		{name: "good engagement", viewCount: 1000, likeCount: 30, expected: 3.0},
		{name: "low engagement", viewCount: 1000, likeCount: 10, expected: 1.0},
		{name: "zero views", viewCount: 0, likeCount: 100, expected: 0},
		{name: "zero likes", viewCount: 1000, likeCount: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PerformanceScore(tt.viewCount, tt.likeCount), 1e-9)
		})
	}
}

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected models.PerformanceRating
	}{
		{name: "above high threshold", score: 6.0, expected: models.RatingHigh},
		{name: "high boundary is inclusive", score: 5.0, expected: models.RatingHigh},
		{name: "between thresholds", score: 3.0, expected: models.RatingGood},
		{name: "good boundary is inclusive", score: 2.0, expected: models.RatingGood},
		{name: "below good threshold", score: 1.99, expected: models.RatingLow},
		{name: "zero", score: 0, expected: models.RatingLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rate(tt.score))
		})
	}
}

func TestScoreVideos(t *testing.T) {
	videos := []models.VideoRecord{
		{VideoID: "a", ViewCount: 1000, LikeCount: 60},
		{VideoID: "b", ViewCount: 0, LikeCount: 50},
	}

	ScoreVideos(videos)

	assert.InDelta(t, 6.0, videos[0].PerformanceScore, 1e-9)
	assert.Equal(t, models.RatingHigh, videos[0].PerformanceRating)

	// A video nobody watched scores zero instead of dividing by zero
	assert.Zero(t, videos[1].PerformanceScore)
	assert.Equal(t, models.RatingLow, videos[1].PerformanceRating)
}

func TestAggregateChannels(t *testing.T) {
	videos := []models.VideoRecord{
		{VideoID: "v1", ChannelID: "c1", ViewCount: 100, LikeCount: 10, CommentCount: 5},
		{VideoID: "v2", ChannelID: "c2", ViewCount: 200, LikeCount: 2, CommentCount: 1},
		{VideoID: "v3", ChannelID: "c1", ViewCount: 300, LikeCount: 20, CommentCount: 15},
		{VideoID: "v4", ChannelID: "", ViewCount: 999},
	}

	aggs := AggregateChannels(videos)

	assert.Len(t, aggs, 2)
	assert.Equal(t, "c1", aggs[0].ChannelID)
	assert.Equal(t, 2, aggs[0].Appearances)
	assert.Equal(t, int64(400), aggs[0].TotalViews)
	assert.Equal(t, int64(30), aggs[0].TotalLikes)
	assert.Equal(t, int64(20), aggs[0].TotalComments)

	assert.Equal(t, "c2", aggs[1].ChannelID)
	assert.Equal(t, 1, aggs[1].Appearances)
}

func TestScoreChannel(t *testing.T) {
	ch := models.ChannelRecord{ChannelID: "c1"}
	agg := ChannelAggregate{
		ChannelID:     "c1",
		Appearances:   2,
		TotalViews:    1000,
		TotalLikes:    50,
		TotalComments: 20,
	}

	ScoreChannel(&ch, agg, 10, DefaultWeights)

	assert.InDelta(t, 0.07, ch.EngagementScore, 1e-9)
	assert.InDelta(t, 0.2, ch.RelevanceScore, 1e-9)
	assert.InDelta(t, 0.7*0.07+0.3*0.2, ch.CombinedScore, 1e-9)
	assert.Equal(t, 2, ch.VideosInResults)
}

func TestScoreChannel_ZeroViews(t *testing.T) {
	ch := models.ChannelRecord{ChannelID: "c1", SubscriberCount: 0}
	agg := ChannelAggregate{ChannelID: "c1", Appearances: 1}

	ScoreChannel(&ch, agg, 5, DefaultWeights)

	assert.Zero(t, ch.EngagementScore)
	assert.InDelta(t, 0.2, ch.RelevanceScore, 1e-9)
	assert.GreaterOrEqual(t, ch.CombinedScore, 0.0)
}
