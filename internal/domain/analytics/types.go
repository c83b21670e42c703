package analytics

import "time"

// Trend classifications over a sentiment series.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendVolatile  = "volatile"
	TrendStable    = "stable"
)

// Event is one tracked user activity.
type Event struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"userId"`
	ConversationID int64          `json:"conversationId,omitempty"`
	Type           string         `json:"type"`
	Name           string         `json:"name"`
	Severity       string         `json:"severity"`
	Data           map[string]any `json:"data,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Event severities.
const (
	SeverityNormal   = "normal"
	SeverityElevated = "elevated"
	SeverityCritical = "critical"
)

// KeyEvent marks a sentiment spike inside a trend window.
type KeyEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Sentiment float64   `json:"sentiment"`
}

// MoodTrend summarizes a user's emotional trajectory over a window.
type MoodTrend struct {
	UserID           int64      `json:"userId"`
	TrendType        string     `json:"trendType"`
	TrendStrength    float64    `json:"trendStrength"`
	DurationDays     int        `json:"durationDays"`
	DominantEmotion  string     `json:"dominantEmotion"`
	EmotionStability float64    `json:"emotionStability"`
	AverageSentiment float64    `json:"averageSentiment"`
	DataPoints       int        `json:"dataPoints"`
	KeyEvents        []KeyEvent `json:"keyEvents,omitempty"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          time.Time  `json:"endDate"`
}

// Dashboard aggregates the analytics surface for one user.
type Dashboard struct {
	UserID             int64      `json:"userId"`
	AnalysisPeriodDays int        `json:"analysisPeriodDays"`
	MoodTrend          *MoodTrend `json:"moodTrend,omitempty"`
	TotalConversations int        `json:"totalConversations"`
	TotalMessages      int64      `json:"totalMessages"`
	CrisisEpisodes     int        `json:"crisisEpisodes"`
	RecentEvents       []Event    `json:"recentEvents"`
}
