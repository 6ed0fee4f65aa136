package analytics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/config"
	"github.com/spacesedan/echomind/internal/analytics"
	"github.com/spacesedan/echomind/internal/models"
)

func findWarning(report models.WarningReport, kind models.WarningKind) (models.Warning, bool) {
	for _, w := range report.Warnings {
		if w.Kind == kind {
			return w, true
		}
	}
	return models.Warning{}, false
}

func Test_DetectWarnings_empty_window_reports_zero_checked(t *testing.T) {
	report := analytics.DetectWarnings(nil, testNow, config.DefaultPolicy())

	assert.Equal(t, 0, report.TotalChecked)
	assert.Empty(t, report.Warnings)
	assert.NotNil(t, report.Warnings)
}

func Test_DetectWarnings_consistently_negative_fires_at_five_records(t *testing.T) {
	var records []models.AnalysisRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(time.Duration(i)*time.Hour, -0.5, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	warning, ok := findWarning(report, models.WarningConsistentlyNegative)
	require.True(t, ok)
	assert.Equal(t, models.SeverityMedium, warning.Severity)
	assert.Equal(t, 5, report.TotalChecked)
}

func Test_DetectWarnings_four_negative_records_stay_quiet(t *testing.T) {
	var records []models.AnalysisRecord
	for i := 0; i < 4; i++ {
		records = append(records, record(time.Duration(i)*time.Hour, -0.5, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	_, ok := findWarning(report, models.WarningConsistentlyNegative)
	assert.False(t, ok)
}

func Test_DetectWarnings_boundary_compound_does_not_count(t *testing.T) {
	// Exactly -0.3 is not below the floor.
	var records []models.AnalysisRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(time.Duration(i)*time.Hour, -0.3, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	_, ok := findWarning(report, models.WarningConsistentlyNegative)
	assert.False(t, ok)
}

func Test_DetectWarnings_sentiment_drop_compares_recent_to_older(t *testing.T) {
	// Newest three average -0.4, the three before them average 0.2.
	records := []models.AnalysisRecord{
		record(1*time.Hour, -0.4, models.ModalityNone),
		record(2*time.Hour, -0.4, models.ModalityNone),
		record(3*time.Hour, -0.4, models.ModalityNone),
		record(4*time.Hour, 0.2, models.ModalityNone),
		record(5*time.Hour, 0.2, models.ModalityNone),
		record(6*time.Hour, 0.2, models.ModalityNone),
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	warning, ok := findWarning(report, models.WarningSentimentDrop)
	require.True(t, ok)
	assert.Equal(t, models.SeverityLow, warning.Severity)
}

func Test_DetectWarnings_drop_requires_six_records(t *testing.T) {
	records := []models.AnalysisRecord{
		record(1*time.Hour, -0.8, models.ModalityNone),
		record(2*time.Hour, -0.8, models.ModalityNone),
		record(3*time.Hour, -0.8, models.ModalityNone),
		record(4*time.Hour, 0.8, models.ModalityNone),
		record(5*time.Hour, 0.8, models.ModalityNone),
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	_, ok := findWarning(report, models.WarningSentimentDrop)
	assert.False(t, ok)
}

func Test_DetectWarnings_high_frequency_fires_above_twenty(t *testing.T) {
	var records []models.AnalysisRecord
	for i := 0; i < 21; i++ {
		records = append(records, record(time.Duration(i)*time.Hour, 0.1, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	warning, ok := findWarning(report, models.WarningHighFrequency)
	require.True(t, ok)
	assert.Equal(t, models.SeverityLow, warning.Severity)
	assert.Contains(t, warning.Message, fmt.Sprintf("%d", 21))
}

func Test_DetectWarnings_exactly_twenty_records_stay_quiet(t *testing.T) {
	var records []models.AnalysisRecord
	for i := 0; i < 20; i++ {
		records = append(records, record(time.Duration(i)*time.Hour, 0.1, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	_, ok := findWarning(report, models.WarningHighFrequency)
	assert.False(t, ok)
}

func Test_DetectWarnings_ignores_records_outside_the_window(t *testing.T) {
	var records []models.AnalysisRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(10*24*time.Hour, -0.9, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	assert.Equal(t, 0, report.TotalChecked)
	assert.Empty(t, report.Warnings)
}

func Test_DetectWarnings_multiple_rules_fire_together(t *testing.T) {
	var records []models.AnalysisRecord
	for i := 0; i < 21; i++ {
		records = append(records, record(time.Duration(i)*time.Hour, -0.6, models.ModalityNone))
	}

	report := analytics.DetectWarnings(records, testNow, config.DefaultPolicy())

	_, negative := findWarning(report, models.WarningConsistentlyNegative)
	_, frequency := findWarning(report, models.WarningHighFrequency)
	assert.True(t, negative)
	assert.True(t, frequency)
}
