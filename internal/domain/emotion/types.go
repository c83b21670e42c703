package emotion

import "time"

// Labels enumerates the emotion classes the analyzer scores.
var Labels = []string{"joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral"}

// Scores maps emotion label to model confidence.
type Scores map[string]float64

// Dominant returns the highest scoring emotion and its score.
func (s Scores) Dominant() (string, float64) {
	best := "neutral"
	bestScore := 0.0
	for _, label := range Labels {
		if score := s[label]; score > bestScore {
			best = label
			bestScore = score
		}
	}
	return best, bestScore
}

// Analysis is one persisted emotion analysis result.
type Analysis struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	MessageID      int64     `json:"messageId,omitempty"`
	Joy            float64   `json:"joy"`
	Sadness        float64   `json:"sadness"`
	Anger          float64   `json:"anger"`
	Fear           float64   `json:"fear"`
	Surprise       float64   `json:"surprise"`
	Disgust        float64   `json:"disgust"`
	Neutral        float64   `json:"neutral"`
	SentimentScore float64   `json:"sentimentScore"`
	SentimentLabel string    `json:"sentimentLabel"`
	Themes         []string  `json:"themes"`
	Keywords       []string  `json:"keywords"`
	Confidence     float64   `json:"confidence"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

// Scores rebuilds the label map from the flattened columns.
func (a Analysis) Scores() Scores {
	return Scores{
		"joy":      a.Joy,
		"sadness":  a.Sadness,
		"anger":    a.Anger,
		"fear":     a.Fear,
		"surprise": a.Surprise,
		"disgust":  a.Disgust,
		"neutral":  a.Neutral,
	}
}

// Pattern is a recurring emotional theme detected over a window.
type Pattern struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Frequency   int                `json:"frequency"`
	Intensity   float64            `json:"intensity"`
	Emotions    map[string]float64 `json:"emotions"`
}

// Config tunes the analysis pipeline.
type Config struct {
	// Threshold is the minimum score for an emotion to count as dominant;
	// below it the analysis is labelled neutral.
	Threshold float64
}
