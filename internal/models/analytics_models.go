package models

import "time"

// Stats is the aggregate view over a window of analysis records.
type Stats struct {
	TotalRecords      int             `json:"total_records"`
	AverageLength     float64         `json:"average_length"`
	AverageSentiment  float64         `json:"average_sentiment"`
	SentimentCounts   SentimentCounts `json:"sentiment_distribution"`
	ModalityUsage     map[string]int  `json:"modality_usage"`
	MostActiveWeekday time.Weekday    `json:"most_active_weekday"`
	RecentActivity7d  int             `json:"recent_activity_7days"`
}

type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// TrendPoint is one calendar day with at least one record in the query
// window. Days without records are omitted, not zero-filled.
type TrendPoint struct {
	Date         string  `json:"date"`
	AvgSentiment float64 `json:"avg_sentiment"`
	Count        int     `json:"count"`
}

// WeeklyReport covers the trailing 7-day window.
type WeeklyReport struct {
	TotalConversations int             `json:"total_conversations"`
	AverageSentiment   float64         `json:"average_sentiment"`
	Breakdown          SentimentCounts `json:"breakdown"`
	Summary            string          `json:"summary"`
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// MonthlyReport covers the trailing 30-day window and compares the two
// halves of the window for a coarse direction signal.
type MonthlyReport struct {
	TotalConversations int            `json:"total_conversations"`
	AverageSentiment   float64        `json:"average_sentiment"`
	FirstHalfAvg       float64        `json:"first_half_avg"`
	SecondHalfAvg      float64        `json:"second_half_avg"`
	SentimentTrend     TrendDirection `json:"sentiment_trend"`
}
