package emotion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/innercalm/backend/pkg/errors"
)

type stubClassifier struct {
	scores Scores
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (Scores, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func sadScores() Scores {
	return Scores{"joy": 0.02, "sadness": 0.85, "anger": 0.03, "fear": 0.05, "surprise": 0.01, "disgust": 0.01, "neutral": 0.03}
}

func newEmotionService(classifier Classifier, store Store) (Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(Config{Threshold: 0.5}, repo, classifier, store, testLogger())
	return svc, repo
}

func TestAnalyze_UsesClassifierScores(t *testing.T) {
	classifier := &stubClassifier{scores: sadScores()}
	svc, repo := newEmotionService(classifier, nil)

	analysis, err := svc.Analyze(context.Background(), 1, 10, "I feel so alone since the breakup")
	require.NoError(t, err)
	require.Equal(t, "negative", analysis.SentimentLabel)
	require.InDelta(t, -0.85, analysis.SentimentScore, 1e-9)
	require.InDelta(t, 0.85, analysis.Confidence, 1e-9)
	require.Contains(t, analysis.Themes, "relationships")
	require.Contains(t, analysis.Keywords, "alone")
	require.Len(t, repo.analyses, 1)
}

func TestAnalyze_BelowThresholdIsNeutral(t *testing.T) {
	classifier := &stubClassifier{scores: Scores{"joy": 0.3, "sadness": 0.2, "neutral": 0.4}}
	svc, _ := newEmotionService(classifier, nil)

	analysis, err := svc.Analyze(context.Background(), 1, 0, "just another ordinary day at the office")
	require.NoError(t, err)
	require.Equal(t, "neutral", analysis.SentimentLabel)
	require.Zero(t, analysis.SentimentScore)
}

func TestAnalyze_FallsBackToLexicon(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("inference api down")}
	svc, _ := newEmotionService(classifier, nil)

	analysis, err := svc.Analyze(context.Background(), 1, 0, "I am so angry and frustrated right now")
	require.NoError(t, err)
	require.Equal(t, "negative", analysis.SentimentLabel)
	require.Greater(t, analysis.Anger, 0.5)
}

func TestAnalyze_EmptyText(t *testing.T) {
	svc, _ := newEmotionService(&stubClassifier{scores: sadScores()}, nil)

	_, err := svc.Analyze(context.Background(), 1, 0, "   ")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestAnalyze_CacheSkipsClassifier(t *testing.T) {
	classifier := &stubClassifier{scores: sadScores()}
	store := newMemoryStore()
	svc, _ := newEmotionService(classifier, store)

	_, err := svc.Analyze(context.Background(), 1, 0, "I feel hopeless today")
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), 2, 0, "I feel hopeless today")
	require.NoError(t, err)
	require.Equal(t, 1, classifier.calls)
}

func TestDetectPatterns(t *testing.T) {
	svc, repo := newEmotionService(&stubClassifier{scores: sadScores()}, nil)

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		repo.analyses = append(repo.analyses, Analysis{
			UserID:     1,
			Sadness:    0.8,
			Joy:        0.1,
			AnalyzedAt: now.AddDate(0, 0, -i),
		})
	}

	patterns, err := svc.DetectPatterns(context.Background(), 1, 30)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	require.Equal(t, "recurring_sadness", patterns[0].Name)
	require.Equal(t, 4, patterns[0].Frequency)
	require.InDelta(t, 0.8, patterns[0].Intensity, 1e-9)
}

func TestDetectPatterns_NeedsMinimumData(t *testing.T) {
	svc, repo := newEmotionService(&stubClassifier{scores: sadScores()}, nil)
	repo.analyses = append(repo.analyses, Analysis{UserID: 1, Sadness: 0.9, AnalyzedAt: time.Now().UTC()})

	patterns, err := svc.DetectPatterns(context.Background(), 1, 30)
	require.NoError(t, err)
	require.Empty(t, patterns)
}

func TestDeleteUserData(t *testing.T) {
	svc, _ := newEmotionService(&stubClassifier{scores: sadScores()}, nil)

	_, err := svc.Analyze(context.Background(), 1, 0, "I feel so alone since the breakup")
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), 2, 0, "I feel so alone since the breakup")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUserData(context.Background(), 1))

	gone, err := svc.ListAnalyses(context.Background(), 1, time.Time{}, 0)
	require.NoError(t, err)
	require.Empty(t, gone)

	kept, err := svc.ListAnalyses(context.Background(), 2, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, kept, 1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryRepo struct {
	analyses []Analysis
	seq      int64
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{} }

func (m *memoryRepo) Save(_ context.Context, analysis Analysis) (Analysis, error) {
	m.seq++
	analysis.ID = m.seq
	m.analyses = append(m.analyses, analysis)
	return analysis, nil
}

func (m *memoryRepo) ListByUser(_ context.Context, userID int64, since time.Time, limit int) ([]Analysis, error) {
	var out []Analysis
	for _, analysis := range m.analyses {
		if analysis.UserID == userID && !analysis.AnalyzedAt.Before(since) {
			out = append(out, analysis)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) DeleteByUser(_ context.Context, userID int64) error {
	var kept []Analysis
	for _, analysis := range m.analyses {
		if analysis.UserID != userID {
			kept = append(kept, analysis)
		}
	}
	m.analyses = kept
	return nil
}

type memoryStore struct {
	entries map[string]Scores
}

func newMemoryStore() *memoryStore { return &memoryStore{entries: make(map[string]Scores)} }

func (m *memoryStore) Get(_ context.Context, key string) (Scores, bool, error) {
	scores, ok := m.entries[key]
	return scores, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key string, scores Scores, _ time.Duration) error {
	m.entries[key] = scores
	return nil
}
