package analytics

import (
	"fmt"
	"time"

	"github.com/spacesedan/echomind/internal/models"
)

// WeeklyReport aggregates the trailing 7-day window. The sentiment
// breakdown always sums to the window's total conversation count.
func ComputeWeeklyReport(records []models.AnalysisRecord, now time.Time) models.WeeklyReport {
	window := restrictWindow(records, now, 7)

	report := models.WeeklyReport{TotalConversations: len(window)}
	if len(window) == 0 {
		report.Summary = "No conversations recorded this week."
		return report
	}

	var sum float64
	for _, record := range window {
		sum += record.Sentiment.Compound
		switch record.Sentiment.Label() {
		case models.SentimentPositive:
			report.Breakdown.Positive++
		case models.SentimentNegative:
			report.Breakdown.Negative++
		default:
			report.Breakdown.Neutral++
		}
	}
	report.AverageSentiment = sum / float64(len(window))
	report.Summary = fmt.Sprintf("%d conversations this week with an average sentiment of %.3f.",
		len(window), report.AverageSentiment)
	return report
}

// MonthlyReport aggregates the trailing 30-day window and splits it at
// its midpoint: the first half is the older 15 days, the second half the
// newer 15. Direction comes from a strict comparison of the halves'
// means; equal means is stable.
func ComputeMonthlyReport(records []models.AnalysisRecord, now time.Time) models.MonthlyReport {
	window := restrictWindow(records, now, 30)

	report := models.MonthlyReport{
		TotalConversations: len(window),
		SentimentTrend:     models.TrendStable,
	}
	if len(window) == 0 {
		return report
	}

	midpoint := now.AddDate(0, 0, -15)

	var total, firstSum, secondSum float64
	var firstCount, secondCount int
	for _, record := range window {
		total += record.Sentiment.Compound
		if record.CreatedAt.Before(midpoint) {
			firstSum += record.Sentiment.Compound
			firstCount++
		} else {
			secondSum += record.Sentiment.Compound
			secondCount++
		}
	}
	report.AverageSentiment = total / float64(len(window))

	if firstCount > 0 {
		report.FirstHalfAvg = firstSum / float64(firstCount)
	}
	if secondCount > 0 {
		report.SecondHalfAvg = secondSum / float64(secondCount)
	}

	switch {
	case report.SecondHalfAvg > report.FirstHalfAvg:
		report.SentimentTrend = models.TrendImproving
	case report.SecondHalfAvg < report.FirstHalfAvg:
		report.SentimentTrend = models.TrendDeclining
	}
	return report
}

func restrictWindow(records []models.AnalysisRecord, now time.Time, days int) []models.AnalysisRecord {
	cutoff := now.AddDate(0, 0, -days)
	var window []models.AnalysisRecord
	for _, record := range records {
		if !record.CreatedAt.Before(cutoff) {
			window = append(window, record)
		}
	}
	return window
}
