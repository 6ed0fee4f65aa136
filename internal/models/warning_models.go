package models

type WarningKind string

const (
	WarningConsistentlyNegative WarningKind = "consistently_negative"
	WarningSentimentDrop        WarningKind = "sentiment_drop"
	WarningHighFrequency        WarningKind = "high_frequency"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Warning is a heuristic-triggered flag over recent records. It suggests
// a pattern worth attention, not a diagnosis.
type Warning struct {
	Kind     WarningKind `json:"type"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

// WarningReport distinguishes "no warnings" from "no data": TotalChecked
// reports how many records the detector evaluated.
type WarningReport struct {
	Warnings     []Warning `json:"warnings"`
	TotalChecked int       `json:"total_checked"`
}
