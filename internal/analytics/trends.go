package analytics

import (
	"sort"
	"time"

	"github.com/spacesedan/echomind/internal/models"
)

const trendDateLayout = "2006-01-02"

// ComputeTrends groups records by calendar date within the trailing
// `days` window and emits one point per day that has at least one record.
// Days with zero records are omitted, not zero-filled; callers must
// handle a sparse series. Dates come from each record's own stored
// timestamp.
func ComputeTrends(records []models.AnalysisRecord, now time.Time, days int) []models.TrendPoint {
	cutoff := now.AddDate(0, 0, -days)

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)

	for _, record := range records {
		if record.CreatedAt.Before(cutoff) {
			continue
		}
		date := record.CreatedAt.Format(trendDateLayout)
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
		}
		b.sum += record.Sentiment.Compound
		b.count++
	}

	points := make([]models.TrendPoint, 0, len(buckets))
	for date, b := range buckets {
		points = append(points, models.TrendPoint{
			Date:         date,
			AvgSentiment: b.sum / float64(b.count),
			Count:        b.count,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}
