package recommendation

import "time"

// Type classifies a healing recommendation.
type Type string

const (
	TypeBreathingExercise   Type = "breathing_exercise"
	TypeJournalingPrompt    Type = "journaling_prompt"
	TypeMindfulnessPractice Type = "mindfulness_practice"
	TypeCognitiveReframing  Type = "cognitive_reframing"
	TypePhysicalActivity    Type = "physical_activity"
	TypeRelaxationTechnique Type = "relaxation_technique"
)

// Recommendation is one personalized healing suggestion.
type Recommendation struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"userId"`
	Type                Type       `json:"type"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Instructions        string     `json:"instructions"`
	TargetEmotions      []string   `json:"targetEmotions"`
	DifficultyLevel     int        `json:"difficultyLevel"`
	EstimatedDuration   int        `json:"estimatedDuration"`
	IsCompleted         bool       `json:"isCompleted"`
	EffectivenessRating *int       `json:"effectivenessRating,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
}

// Update carries the user-editable fields; nil means unchanged.
type Update struct {
	IsCompleted         *bool   `json:"isCompleted,omitempty"`
	EffectivenessRating *int    `json:"effectivenessRating,omitempty"`
	Notes               *string `json:"notes,omitempty"`
}

// Summary aggregates a user's recommendation history.
type Summary struct {
	TotalRecommendations int              `json:"totalRecommendations"`
	CompletedCount       int              `json:"completedCount"`
	CompletionRate       float64          `json:"completionRate"`
	AverageEffectiveness *float64         `json:"averageEffectiveness,omitempty"`
	MostEffectiveType    Type             `json:"mostEffectiveType,omitempty"`
	Recent               []Recommendation `json:"recentRecommendations"`
}

// ListFilter narrows recommendation listings.
type ListFilter struct {
	Completed *bool
	Limit     int
	Offset    int
}
