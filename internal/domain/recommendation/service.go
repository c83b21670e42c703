package recommendation

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/innercalm/backend/internal/domain/emotion"
	apperrors "github.com/innercalm/backend/pkg/errors"
)

// Service exposes the recommendation workflows.
type Service interface {
	Generate(ctx context.Context, userID int64, limit int) ([]Recommendation, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]Recommendation, error)
	Get(ctx context.Context, userID, id int64) (Recommendation, error)
	Update(ctx context.Context, userID, id int64, update Update) (Recommendation, error)
	Delete(ctx context.Context, userID, id int64) error
	Summarize(ctx context.Context, userID int64) (Summary, error)
}

type service struct {
	repo     Repository
	emotions emotion.Service
	rng      *rand.Rand
	logger   *slog.Logger
}

const (
	defaultLimit = 3
	maxLimit     = 10

	// Score cutoffs mirror the pattern detector: a strong current emotion
	// beats a weekly average.
	strongEmotionThreshold  = 0.5
	averageEmotionThreshold = 0.3
	lookbackDays            = 7
)

// NewService constructs a Service. emotions may be nil, in which case only
// general recommendations are generated.
func NewService(repo Repository, emotions emotion.Service, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		emotions: emotions,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger.With("component", "recommendation.service"),
	}
}

func (s *service) Generate(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	targets := s.targetEmotions(ctx, userID)
	s.logger.Debug("generating recommendations", "user_id", userID, "targets", targets)

	seen := make(map[string]bool)
	out := make([]Recommendation, 0, limit)
	for _, target := range targets {
		if len(out) == limit {
			break
		}
		if rec, ok := s.pick(target, userID, seen); ok {
			out = append(out, rec)
		}
	}
	for len(out) < limit {
		rec, ok := s.pick("general", userID, seen)
		if !ok {
			break
		}
		out = append(out, rec)
	}

	for i, rec := range out {
		saved, err := s.repo.Save(ctx, rec)
		if err != nil {
			return nil, apperrors.Wrap("recommendation_error", "save recommendation failed", err)
		}
		out[i] = saved
	}
	return out, nil
}

// targetEmotions picks the emotions to address: the latest strong analysis
// first, then elevated weekly averages, then general wellbeing.
func (s *service) targetEmotions(ctx context.Context, userID int64) []string {
	if s.emotions == nil {
		return []string{"general"}
	}

	latest, err := s.emotions.ListAnalyses(ctx, userID, time.Time{}, 1)
	if err != nil {
		s.logger.Error("load latest analysis failed", "error", err)
		return []string{"general"}
	}

	var targets []string
	if len(latest) > 0 {
		scores := latest[0].Scores()
		for _, label := range []string{"sadness", "anger", "fear", "joy"} {
			if scores[label] > strongEmotionThreshold {
				targets = append(targets, label)
			}
		}
	}
	if len(targets) > 0 {
		return targets
	}

	since := time.Now().AddDate(0, 0, -lookbackDays)
	recent, err := s.emotions.ListAnalyses(ctx, userID, since, 0)
	if err != nil {
		s.logger.Error("load recent analyses failed", "error", err)
		return []string{"general"}
	}
	if len(recent) > 0 {
		averages := map[string]float64{}
		for _, analysis := range recent {
			averages["sadness"] += analysis.Sadness
			averages["anger"] += analysis.Anger
			averages["fear"] += analysis.Fear
		}
		type labelled struct {
			label string
			score float64
		}
		ranked := make([]labelled, 0, len(averages))
		for label, total := range averages {
			ranked = append(ranked, labelled{label, total / float64(len(recent))})
		}
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		for _, entry := range ranked {
			if entry.score > averageEmotionThreshold {
				targets = append(targets, entry.label)
			}
		}
	}
	if len(targets) == 0 {
		targets = []string{"general"}
	}
	return targets
}

func (s *service) pick(target string, userID int64, seen map[string]bool) (Recommendation, bool) {
	templates := catalog[target]
	if len(templates) == 0 {
		return Recommendation{}, false
	}

	offset := s.rng.Intn(len(templates))
	for i := range templates {
		tmpl := templates[(offset+i)%len(templates)]
		if seen[tmpl.Title] {
			continue
		}
		seen[tmpl.Title] = true

		emotions := []string{target}
		if target == "general" {
			emotions = []string{"stress", "general_wellness"}
		}
		return Recommendation{
			UserID:            userID,
			Type:              tmpl.Type,
			Title:             tmpl.Title,
			Description:       tmpl.Description,
			Instructions:      tmpl.Instructions,
			TargetEmotions:    emotions,
			DifficultyLevel:   1,
			EstimatedDuration: tmpl.Duration,
			CreatedAt:         time.Now().UTC(),
		}, true
	}
	return Recommendation{}, false
}

func (s *service) List(ctx context.Context, userID int64, filter ListFilter) ([]Recommendation, error) {
	recs, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.Wrap("recommendation_error", "list recommendations failed", err)
	}
	return recs, nil
}

func (s *service) Get(ctx context.Context, userID, id int64) (Recommendation, error) {
	rec, found, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return Recommendation{}, apperrors.Wrap("recommendation_error", "load recommendation failed", err)
	}
	if !found {
		return Recommendation{}, apperrors.Wrap("recommendation_not_found", "recommendation does not exist", nil)
	}
	return rec, nil
}

func (s *service) Update(ctx context.Context, userID, id int64, update Update) (Recommendation, error) {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return Recommendation{}, err
	}

	if update.EffectivenessRating != nil {
		if *update.EffectivenessRating < 1 || *update.EffectivenessRating > 5 {
			return Recommendation{}, apperrors.Wrap("invalid_input", "effectiveness rating must be between 1 and 5", nil)
		}
		rec.EffectivenessRating = update.EffectivenessRating
	}
	if update.Notes != nil {
		rec.Notes = *update.Notes
	}
	if update.IsCompleted != nil {
		rec.IsCompleted = *update.IsCompleted
		if rec.IsCompleted && rec.CompletedAt == nil {
			now := time.Now().UTC()
			rec.CompletedAt = &now
		}
		if !rec.IsCompleted {
			rec.CompletedAt = nil
		}
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return Recommendation{}, apperrors.Wrap("recommendation_error", "update recommendation failed", err)
	}
	return rec, nil
}

func (s *service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return apperrors.Wrap("recommendation_error", "delete recommendation failed", err)
	}
	return nil
}

func (s *service) Summarize(ctx context.Context, userID int64) (Summary, error) {
	all, err := s.repo.List(ctx, userID, ListFilter{})
	if err != nil {
		return Summary{}, apperrors.Wrap("recommendation_error", "list recommendations failed", err)
	}

	summary := Summary{TotalRecommendations: len(all)}
	typeRatings := map[Type][]int{}
	var ratingSum, ratingCount int
	for _, rec := range all {
		if rec.IsCompleted {
			summary.CompletedCount++
		}
		if rec.EffectivenessRating != nil {
			ratingSum += *rec.EffectivenessRating
			ratingCount++
			typeRatings[rec.Type] = append(typeRatings[rec.Type], *rec.EffectivenessRating)
		}
	}
	if summary.TotalRecommendations > 0 {
		summary.CompletionRate = float64(summary.CompletedCount) / float64(summary.TotalRecommendations) * 100
	}
	if ratingCount > 0 {
		avg := float64(ratingSum) / float64(ratingCount)
		summary.AverageEffectiveness = &avg
	}

	var bestAvg float64
	for recType, ratings := range typeRatings {
		var sum int
		for _, rating := range ratings {
			sum += rating
		}
		avg := float64(sum) / float64(len(ratings))
		if avg > bestAvg {
			bestAvg = avg
			summary.MostEffectiveType = recType
		}
	}

	if len(all) > 5 {
		all = all[:5]
	}
	summary.Recent = all
	return summary, nil
}
