package analytics

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/innercalm/backend/internal/domain/chat"
	"github.com/innercalm/backend/internal/domain/emotion"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

// Service exposes the progress analytics workflows.
type Service interface {
	TrackEvent(ctx context.Context, event Event) (Event, error)
	AnalyzeMoodTrend(ctx context.Context, userID int64, days int) (*MoodTrend, error)
	BuildDashboard(ctx context.Context, userID int64, days int) (Dashboard, error)
}

type service struct {
	events   EventRepository
	emotions emotion.Service
	chats    chat.Repository
	logger   *slog.Logger
}

const (
	defaultLookbackDays = 30
	// minTrendPoints is the minimum number of analyses needed before a
	// trend classification is meaningful.
	minTrendPoints = 3

	slopeThreshold      = 0.1
	volatilityThreshold = 0.3
	spikeThreshold      = 0.7
)

// NewService constructs a Service.
func NewService(events EventRepository, emotions emotion.Service, chats chat.Repository, logger *slog.Logger) Service {
	return &service{
		events:   events,
		emotions: emotions,
		chats:    chats,
		logger:   logger.With("component", "analytics.service"),
	}
}

func (s *service) TrackEvent(ctx context.Context, event Event) (Event, error) {
	if event.UserID == 0 || event.Type == "" || event.Name == "" {
		return Event{}, apperrors.Wrap("invalid_input", "event requires user, type and name", nil)
	}
	if event.Severity == "" {
		event.Severity = SeverityNormal
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	saved, err := s.events.Save(ctx, event)
	if err != nil {
		return Event{}, apperrors.Wrap("analytics_error", "save event failed", err)
	}
	s.logger.Info("analytics event tracked", "user_id", event.UserID, "type", event.Type, "name", event.Name)
	return saved, nil
}

// AnalyzeMoodTrend classifies the user's sentiment trajectory over the
// window. Returns nil when there is not enough data.
func (s *service) AnalyzeMoodTrend(ctx context.Context, userID int64, days int) (*MoodTrend, error) {
	if days <= 0 {
		days = defaultLookbackDays
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	analyses, err := s.emotions.ListAnalyses(ctx, userID, start, 0)
	if err != nil {
		return nil, apperrors.Wrap("analytics_error", "load analyses failed", err)
	}
	if len(analyses) < minTrendPoints {
		return nil, nil
	}

	// ListAnalyses returns newest first; trend math wants chronological.
	ordered := make([]emotion.Analysis, len(analyses))
	for i, analysis := range analyses {
		ordered[len(analyses)-1-i] = analysis
	}

	sentiments := make([]float64, len(ordered))
	for i, analysis := range ordered {
		sentiments[i] = analysis.SentimentScore
	}

	slope := trendSlope(sentiments)
	deviation := stddev(sentiments)

	trendType := TrendStable
	switch {
	case slope > slopeThreshold:
		trendType = TrendImproving
	case slope < -slopeThreshold:
		trendType = TrendDeclining
	case deviation > volatilityThreshold:
		trendType = TrendVolatile
	}

	totals := map[string]float64{}
	for _, analysis := range ordered {
		totals["joy"] += analysis.Joy
		totals["sadness"] += analysis.Sadness
		totals["anger"] += analysis.Anger
		totals["fear"] += analysis.Fear
	}
	dominant := "neutral"
	best := 0.0
	for _, label := range []string{"joy", "sadness", "anger", "fear"} {
		if totals[label] > best {
			best = totals[label]
			dominant = label
		}
	}

	stability := clamp01(1.0 - deviation)

	var keyEvents []KeyEvent
	for _, analysis := range ordered {
		switch {
		case analysis.SentimentScore < -spikeThreshold:
			keyEvents = append(keyEvents, KeyEvent{Type: "low_mood", Timestamp: analysis.AnalyzedAt, Sentiment: analysis.SentimentScore})
		case analysis.SentimentScore > spikeThreshold:
			keyEvents = append(keyEvents, KeyEvent{Type: "high_mood", Timestamp: analysis.AnalyzedAt, Sentiment: analysis.SentimentScore})
		}
	}

	return &MoodTrend{
		UserID:           userID,
		TrendType:        trendType,
		TrendStrength:    math.Min(math.Abs(slope), 1.0),
		DurationDays:     days,
		DominantEmotion:  dominant,
		EmotionStability: stability,
		AverageSentiment: mean(sentiments),
		DataPoints:       len(ordered),
		KeyEvents:        keyEvents,
		StartDate:        start,
		EndDate:          end,
	}, nil
}

func (s *service) BuildDashboard(ctx context.Context, userID int64, days int) (Dashboard, error) {
	if days <= 0 {
		days = defaultLookbackDays
	}

	trend, err := s.AnalyzeMoodTrend(ctx, userID, days)
	if err != nil {
		return Dashboard{}, err
	}

	conversations, err := s.chats.ListConversations(ctx, userID, 0)
	if err != nil {
		return Dashboard{}, apperrors.Wrap("analytics_error", "list conversations failed", err)
	}
	messages, err := s.chats.CountMessages(ctx, userID)
	if err != nil {
		return Dashboard{}, apperrors.Wrap("analytics_error", "count messages failed", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	crises, err := s.events.CountByType(ctx, userID, "crisis_detected", since)
	if err != nil {
		return Dashboard{}, apperrors.Wrap("analytics_error", "count crisis events failed", err)
	}

	events, err := s.events.ListByUser(ctx, userID, 10)
	if err != nil {
		return Dashboard{}, apperrors.Wrap("analytics_error", "list events failed", err)
	}

	return Dashboard{
		UserID:             userID,
		AnalysisPeriodDays: days,
		MoodTrend:          trend,
		TotalConversations: len(conversations),
		TotalMessages:      messages,
		CrisisEpisodes:     crises,
		RecentEvents:       events,
	}, nil
}

// trendSlope fits a least-squares line over evenly spaced samples.
func trendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := mean(values)

	var numerator, denominator float64
	for i, value := range values {
		dx := float64(i) - xMean
		numerator += dx * (value - yMean)
		denominator += dx * dx
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	var sum float64
	for _, value := range values {
		diff := value - avg
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func clamp01(value float64) float64 {
	return math.Max(0, math.Min(1, value))
}
