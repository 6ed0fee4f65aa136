package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/spacesedan/echomind/config"
	"github.com/spacesedan/echomind/internal/models"
)

// DetectWarnings evaluates the heuristic rules over the trailing window.
// Stateless: every call re-derives everything from the records it is
// given. All applicable warnings are returned together; an empty list
// with a non-zero TotalChecked means "checked, nothing concerning",
// which is distinct from no data at all.
func DetectWarnings(records []models.AnalysisRecord, now time.Time, policy config.Policy) models.WarningReport {
	cutoff := now.Add(-policy.WarningWindow)

	var window []models.AnalysisRecord
	for _, record := range records {
		if !record.CreatedAt.Before(cutoff) {
			window = append(window, record)
		}
	}

	report := models.WarningReport{
		Warnings:     []models.Warning{},
		TotalChecked: len(window),
	}
	if len(window) == 0 {
		return report
	}

	// Newest first; the drop rule depends on this ordering.
	sort.Slice(window, func(i, j int) bool {
		return window[i].CreatedAt.After(window[j].CreatedAt)
	})

	if w, ok := consistentlyNegative(window, policy); ok {
		report.Warnings = append(report.Warnings, w)
	}
	if w, ok := sentimentDrop(window, policy); ok {
		report.Warnings = append(report.Warnings, w)
	}
	if w, ok := highFrequency(window, policy); ok {
		report.Warnings = append(report.Warnings, w)
	}
	return report
}

func consistentlyNegative(window []models.AnalysisRecord, policy config.Policy) (models.Warning, bool) {
	count := 0
	for _, record := range window {
		if record.Sentiment.Compound < policy.NegativeCompoundFloor {
			count++
		}
	}
	if count < policy.NegativeCountTrigger {
		return models.Warning{}, false
	}
	return models.Warning{
		Kind:     models.WarningConsistentlyNegative,
		Severity: models.SeverityMedium,
		Message: fmt.Sprintf("%d recent conversations show strongly negative sentiment. "+
			"Consider reaching out to someone you trust or a professional.", count),
	}, true
}

func sentimentDrop(window []models.AnalysisRecord, policy config.Policy) (models.Warning, bool) {
	if len(window) < policy.DropMinRecords {
		return models.Warning{}, false
	}

	recent := meanCompound(window[:3])
	older := meanCompound(window[3:6])
	if recent >= older-policy.DropDelta {
		return models.Warning{}, false
	}
	return models.Warning{
		Kind:     models.WarningSentimentDrop,
		Severity: models.SeverityLow,
		Message: fmt.Sprintf("Your sentiment dropped from %.2f to %.2f across recent conversations.",
			older, recent),
	}, true
}

func highFrequency(window []models.AnalysisRecord, policy config.Policy) (models.Warning, bool) {
	if len(window) <= policy.HighFrequencyTrigger {
		return models.Warning{}, false
	}
	return models.Warning{
		Kind:     models.WarningHighFrequency,
		Severity: models.SeverityLow,
		Message: fmt.Sprintf("%d conversations in the last week is unusually high. "+
			"Frequent check-ins can be a sign you are carrying a lot right now.", len(window)),
	}, true
}

func meanCompound(records []models.AnalysisRecord) float64 {
	var sum float64
	for _, record := range records {
		sum += record.Sentiment.Compound
	}
	return sum / float64(len(records))
}
