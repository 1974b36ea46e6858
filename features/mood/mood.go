// Package mood records per-session mood scores and computes trend analytics
// over a rolling window.
package mood

import "time"

// Entry is one recorded mood measurement on a 0-100 scale.
type Entry struct {
	ID           int64     `json:"id"`
	UserID       int       `json:"user_id"`
	MoodScore    int       `json:"mood_score"`
	SessionType  string    `json:"session_type"`
	FeedbackText string    `json:"feedback_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Analytics summarizes one user's mood over a period.
type Analytics struct {
	UserID        int     `json:"user_id"`
	AverageMood   float64 `json:"average_mood"`
	MoodTrend     string  `json:"mood_trend"`
	TotalSessions int     `json:"total_sessions"`
	MoodData      []Entry `json:"mood_data"`
}

// Summary aggregates mood across all users for the operations dashboard.
type Summary struct {
	TotalEntries int     `json:"total_entries"`
	AverageMood  float64 `json:"average_mood"`
	MinMood      int     `json:"min_mood"`
	MaxMood      int     `json:"max_mood"`
	ActiveUsers  int     `json:"active_users"`
}

// Trend labels reported by Analytics.
const (
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendNoData       = "no_data"
	TrendInsufficient = "insufficient_data"
)
