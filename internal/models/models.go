package models

import "time"

// SearchMode selects what kind of results a request produces
type SearchMode string

const (
	ModeVideos      SearchMode = "videos"
	ModeCompetitors SearchMode = "competitors"
)

// Window is the trailing time range used to filter by publish date
type Window int

const (
	WindowSevenDays  Window = 7
	WindowThirtyDays Window = 30
)

// Duration returns the window as a time.Duration
func (w Window) Duration() time.Duration {
	return time.Duration(w) * 24 * time.Hour
}

// SearchRequest describes one search. Built once by the query builder and
// never mutated afterwards.
type SearchRequest struct {
	ID             string     `json:"id"`
	Query          string     `json:"query"`
	Mode           SearchMode `json:"mode"`
	Window         Window     `json:"window"`
	MaxResults     int        `json:"max_results"`
	PublishedAfter time.Time  `json:"published_after"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PerformanceRating buckets a video's like-to-view score
type PerformanceRating string

const (
	RatingHigh PerformanceRating = "MAKE THIS VIDEO NOW"
	RatingGood PerformanceRating = "Great"
	RatingLow  PerformanceRating = "Not the best"
)

// VideoRecord represents a video found by a search, with statistics and
// derived engagement metrics
type VideoRecord struct {
	VideoID           string            `json:"video_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	ChannelID         string            `json:"channel_id,omitempty"`
	ChannelTitle      string            `json:"channel_title"`
	PublishedAt       time.Time         `json:"published_at"`
	ViewCount         int64             `json:"view_count"`
	LikeCount         int64             `json:"like_count"`
	CommentCount      int64             `json:"comment_count"`
	PerformanceScore  float64           `json:"performance_score"`
	PerformanceRating PerformanceRating `json:"performance_rating"`
}

// URL returns the watch URL for the video
func (v VideoRecord) URL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}

// ChannelRecord represents a competing channel, with lifetime statistics and
// metrics derived from the videos it placed in the search results
type ChannelRecord struct {
	ChannelID       string  `json:"channel_id"`
	ChannelTitle    string  `json:"channel_title"`
	SubscriberCount int64   `json:"subscriber_count"`
	VideoCount      int64   `json:"video_count"`
	ViewCount       int64   `json:"view_count"`
	VideosInResults int     `json:"videos_in_results"`
	EngagementScore float64 `json:"engagement_score"`
	RelevanceScore  float64 `json:"relevance_score"`
	CombinedScore   float64 `json:"combined_score"`
}

// URL returns the channel page URL
func (c ChannelRecord) URL() string {
	return "https://www.youtube.com/channel/" + c.ChannelID
}

// ResultSet is the ranked output of one search. Exactly one of Videos or
// Channels is populated, depending on the request mode.
type ResultSet struct {
	Request  SearchRequest   `json:"request"`
	Videos   []VideoRecord   `json:"videos,omitempty"`
	Channels []ChannelRecord `json:"channels,omitempty"`
}

// Len returns the number of records in the set
func (r ResultSet) Len() int {
	if r.Request.Mode == ModeCompetitors {
		return len(r.Channels)
	}
	return len(r.Videos)
}

// ExportFormat selects the serialization format for an export
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportArtifact describes a completed export. Write-once; the filename embeds
// a timestamp so repeated exports never collide.
type ExportArtifact struct {
	Path        string       `json:"path"`
	Format      ExportFormat `json:"format"`
	RecordCount int          `json:"record_count"`
	CreatedAt   time.Time    `json:"created_at"`
}

// BatchReport summarizes a batch run across multiple keywords
type BatchReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Mode        SearchMode         `json:"mode"`
	Window      Window             `json:"window"`
	Queries     []BatchQueryResult `json:"queries"`
	Artifacts   []ExportArtifact   `json:"artifacts"`
	Summary     map[string]int     `json:"summary"`
}

// BatchQueryResult is the per-keyword outcome within a batch run
type BatchQueryResult struct {
	Query       string `json:"query"`
	RecordCount int    `json:"record_count"`
	Error       string `json:"error,omitempty"`
}
