package models

import "time"

// LogStatus is the self-reported state of the "system" at log time.
type LogStatus string

const (
	StatusStable     LogStatus = "STABLE"
	StatusUnstable   LogStatus = "UNSTABLE"
	StatusDegraded   LogStatus = "DEGRADED"
	StatusOverloaded LogStatus = "OVERLOADED"
	StatusEmpty      LogStatus = "EMPTY"
	StatusUnknown    LogStatus = "UNKNOWN"
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s LogStatus) bool {
	switch s {
	case StatusStable, StatusUnstable, StatusDegraded, StatusOverloaded, StatusEmpty, StatusUnknown:
		return true
	}
	return false
}

// LogEntry is a single journal record. Content is held in the encrypted wire
// format everywhere except in results returned to the caller; everything else
// is plaintext metadata.
//
// ExpGranted and SystemFeedback are computed once at creation and never
// recomputed, even when the content is later updated.
type LogEntry struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Content        string     `json:"content"`
	Category       string     `json:"category"`
	Type           string     `json:"type"`
	Status         LogStatus  `json:"status"`
	SystemFeedback string     `json:"systemFeedback"`
	ExpGranted     int        `json:"expGranted"`
	Weather        *string    `json:"weather,omitempty"`
	Mood           *string    `json:"mood,omitempty"`
	Icon           *string    `json:"icon,omitempty"`
	Energy         *int       `json:"energy,omitempty"`
	LogDate        time.Time  `json:"logDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// StatusCount is one bucket of the per-status aggregation.
type StatusCount struct {
	Status LogStatus `json:"status"`
	Count  int       `json:"count"`
}
