package recommendation

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innercalm/backend/internal/domain/emotion"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

type stubEmotions struct {
	analyses []emotion.Analysis
}

func (s *stubEmotions) Analyze(context.Context, int64, int64, string) (emotion.Analysis, error) {
	return emotion.Analysis{}, nil
}

func (s *stubEmotions) ListAnalyses(_ context.Context, _ int64, since time.Time, limit int) ([]emotion.Analysis, error) {
	out := make([]emotion.Analysis, 0, len(s.analyses))
	for _, analysis := range s.analyses {
		if analysis.AnalyzedAt.After(since) || since.IsZero() {
			out = append(out, analysis)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubEmotions) DetectPatterns(context.Context, int64, int) ([]emotion.Pattern, error) {
	return nil, nil
}

func (s *stubEmotions) DeleteUserData(context.Context, int64) error {
	return nil
}

type memoryRepo struct {
	items  map[int64]Recommendation
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]Recommendation{}}
}

func (r *memoryRepo) Save(_ context.Context, rec Recommendation) (Recommendation, error) {
	r.nextID++
	rec.ID = r.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.items[rec.ID] = rec
	return rec, nil
}

func (r *memoryRepo) Get(_ context.Context, id, userID int64) (Recommendation, bool, error) {
	rec, ok := r.items[id]
	if !ok || rec.UserID != userID {
		return Recommendation{}, false, nil
	}
	return rec, true, nil
}

// Newest first, matching the repository contract.
func (r *memoryRepo) List(_ context.Context, userID int64, filter ListFilter) ([]Recommendation, error) {
	out := make([]Recommendation, 0)
	for _, rec := range r.items {
		if rec.UserID != userID {
			continue
		}
		if filter.Completed != nil && rec.IsCompleted != *filter.Completed {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, rec Recommendation) error {
	if existing, ok := r.items[rec.ID]; ok && existing.UserID == rec.UserID {
		r.items[rec.ID] = rec
	}
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id, userID int64) error {
	if existing, ok := r.items[id]; ok && existing.UserID == userID {
		delete(r.items, id)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(emotions emotion.Service) (Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, emotions, testLogger()), repo
}

func TestGenerateTargetsStrongEmotion(t *testing.T) {
	emotions := &stubEmotions{analyses: []emotion.Analysis{
		{Sadness: 0.8, AnalyzedAt: time.Now()},
	}}
	svc, _ := newTestService(emotions)

	recs, err := svc.Generate(context.Background(), 1, 3)
	require.NoError(t, err)
	// One slot per target emotion, padded with general wellbeing.
	require.Len(t, recs, 2)
	require.Contains(t, recs[0].TargetEmotions, "sadness")
	require.Contains(t, recs[1].TargetEmotions, "general_wellness")
	for _, rec := range recs {
		require.NotZero(t, rec.ID)
		require.Equal(t, int64(1), rec.UserID)
		require.NotEmpty(t, rec.Title)
		require.NotEmpty(t, rec.Instructions)
	}
}

func TestGenerateFallsBackToWeeklyAverages(t *testing.T) {
	// Latest analysis is mild, but the week trends angry.
	now := time.Now()
	emotions := &stubEmotions{analyses: []emotion.Analysis{
		{Anger: 0.45, AnalyzedAt: now},
		{Anger: 0.48, AnalyzedAt: now.Add(-24 * time.Hour)},
		{Anger: 0.42, AnalyzedAt: now.Add(-48 * time.Hour)},
	}}
	svc, _ := newTestService(emotions)

	recs, err := svc.Generate(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, []string{"anger"}, recs[0].TargetEmotions)
}

func TestGenerateGeneralWhenNoHistory(t *testing.T) {
	svc, _ := newTestService(&stubEmotions{})

	recs, err := svc.Generate(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, TypeRelaxationTechnique, recs[0].Type)
	require.Equal(t, []string{"stress", "general_wellness"}, recs[0].TargetEmotions)
}

func TestGenerateAvoidsDuplicateTitles(t *testing.T) {
	emotions := &stubEmotions{analyses: []emotion.Analysis{
		{Sadness: 0.8, AnalyzedAt: time.Now()},
	}}
	svc, _ := newTestService(emotions)

	recs, err := svc.Generate(context.Background(), 1, 4)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	titles := make(map[string]bool)
	for _, rec := range recs {
		require.False(t, titles[rec.Title], "duplicate title %q", rec.Title)
		titles[rec.Title] = true
	}
}

func TestUpdateMarksCompletion(t *testing.T) {
	svc, _ := newTestService(&stubEmotions{})
	recs, err := svc.Generate(context.Background(), 1, 1)
	require.NoError(t, err)

	done := true
	rating := 4
	updated, err := svc.Update(context.Background(), 1, recs[0].ID, Update{
		IsCompleted:         &done,
		EffectivenessRating: &rating,
	})
	require.NoError(t, err)
	require.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)
	require.Equal(t, 4, *updated.EffectivenessRating)

	undone := false
	updated, err = svc.Update(context.Background(), 1, recs[0].ID, Update{IsCompleted: &undone})
	require.NoError(t, err)
	require.False(t, updated.IsCompleted)
	require.Nil(t, updated.CompletedAt)
}

func TestUpdateRejectsBadRating(t *testing.T) {
	svc, _ := newTestService(&stubEmotions{})
	recs, err := svc.Generate(context.Background(), 1, 1)
	require.NoError(t, err)

	rating := 9
	_, err = svc.Update(context.Background(), 1, recs[0].ID, Update{EffectivenessRating: &rating})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestGetAndDeleteEnforceOwnership(t *testing.T) {
	svc, _ := newTestService(&stubEmotions{})
	recs, err := svc.Generate(context.Background(), 1, 1)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, recs[0].ID)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "recommendation_not_found"))

	err = svc.Delete(context.Background(), 2, recs[0].ID)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "recommendation_not_found"))

	require.NoError(t, svc.Delete(context.Background(), 1, recs[0].ID))
	_, err = svc.Get(context.Background(), 1, recs[0].ID)
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	emotions := &stubEmotions{analyses: []emotion.Analysis{
		{Sadness: 0.8, AnalyzedAt: time.Now()},
	}}
	svc, _ := newTestService(emotions)

	recs, err := svc.Generate(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	done := true
	rating := 5
	_, err = svc.Update(context.Background(), 1, recs[0].ID, Update{IsCompleted: &done, EffectivenessRating: &rating})
	require.NoError(t, err)

	summary, err := svc.Summarize(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalRecommendations)
	require.Equal(t, 1, summary.CompletedCount)
	require.InDelta(t, 50.0, summary.CompletionRate, 0.1)
	require.NotNil(t, summary.AverageEffectiveness)
	require.Equal(t, 5.0, *summary.AverageEffectiveness)
	require.Equal(t, recs[0].Type, summary.MostEffectiveType)
	require.Len(t, summary.Recent, 2)
}
