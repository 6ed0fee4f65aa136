// Package analytics derives aggregate views over stored analysis
// records. Every operation is a pure function of the record window it is
// handed; nothing here owns records or mutates them.
package analytics

import (
	"time"

	"github.com/spacesedan/echomind/internal/models"
)

// ComputeStats aggregates the full record window. now anchors the
// trailing-7-day activity count.
func ComputeStats(records []models.AnalysisRecord, now time.Time) models.Stats {
	stats := models.Stats{
		TotalRecords:  len(records),
		ModalityUsage: make(map[string]int),
	}
	if len(records) == 0 {
		return stats
	}

	var lengthSum, sentimentSum float64
	weekdayCounts := [7]int{}
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, record := range records {
		lengthSum += float64(record.ContentLength)
		sentimentSum += record.Sentiment.Compound

		switch record.Sentiment.Label() {
		case models.SentimentPositive:
			stats.SentimentCounts.Positive++
		case models.SentimentNegative:
			stats.SentimentCounts.Negative++
		default:
			stats.SentimentCounts.Neutral++
		}

		stats.ModalityUsage[string(record.Modality)]++
		weekdayCounts[record.CreatedAt.Weekday()]++

		if !record.CreatedAt.Before(weekAgo) {
			stats.RecentActivity7d++
		}
	}

	stats.AverageLength = lengthSum / float64(len(records))
	stats.AverageSentiment = sentimentSum / float64(len(records))

	// Strict > keeps ties on the lowest weekday index.
	best := 0
	for day := 1; day < 7; day++ {
		if weekdayCounts[day] > weekdayCounts[best] {
			best = day
		}
	}
	stats.MostActiveWeekday = time.Weekday(best)

	return stats
}

// EmotionHistogram tallies how often each label appears as the primary or
// secondary emotion across records that carry a distribution. It is a
// population histogram over label occurrences, not a probability
// distribution.
func EmotionHistogram(records []models.AnalysisRecord) map[string]int {
	histogram := make(map[string]int)
	for _, record := range records {
		if !record.HasEmotions() {
			continue
		}
		top := record.Emotions
		if len(top) > 2 {
			top = top[:2]
		}
		for _, prediction := range top {
			histogram[prediction.Label]++
		}
	}
	return histogram
}
