package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tubescout/tubescout/internal/models"
)

// renderResults writes a plain-text view of a ranked result set
func renderResults(w io.Writer, set models.ResultSet) {
	if set.Request.Mode == models.ModeCompetitors {
		fmt.Fprintf(w, "\nTop Competitors Found: %d results\n\n", len(set.Channels))
		for i, c := range set.Channels {
			fmt.Fprintf(w, "%d. %s\n", i+1, c.ChannelTitle)
			fmt.Fprintf(w, "   Subscribers: %s\n", comma(c.SubscriberCount))
			fmt.Fprintf(w, "   Total Videos: %d\n", c.VideoCount)
			fmt.Fprintf(w, "   Total Views: %s\n", comma(c.ViewCount))
			fmt.Fprintf(w, "   Engagement: %.4f  Relevance: %.4f\n", c.EngagementScore, c.RelevanceScore)
			fmt.Fprintf(w, "   Channel URL: %s\n\n", c.URL())
		}
		return
	}

	fmt.Fprintf(w, "\nTop Videos Found: %d results\n\n", len(set.Videos))
	for i, v := range set.Videos {
		fmt.Fprintf(w, "%d. %s\n", i+1, v.Title)
		fmt.Fprintf(w, "   Channel: %s\n", v.ChannelTitle)
		fmt.Fprintf(w, "   Views: %s\n", comma(v.ViewCount))
		fmt.Fprintf(w, "   Likes: %s\n", comma(v.LikeCount))
		fmt.Fprintf(w, "   Published: %s\n", v.PublishedAt.UTC().Format("02/01/2006"))
		fmt.Fprintf(w, "   URL: %s\n", v.URL())
		fmt.Fprintf(w, "   Performance: Score: %.2f - %s\n\n", v.PerformanceScore, v.PerformanceRating)
	}
}

// comma formats an integer with thousands separators
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	start := 0
	if n < 0 {
		start = 1
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i := 0; i < len(s); i++ {
		if i > start && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
