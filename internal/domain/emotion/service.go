package emotion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/innercalm/backend/pkg/errors"
)

// Service exposes the emotion analysis workflows.
type Service interface {
	Analyze(ctx context.Context, userID, messageID int64, text string) (Analysis, error)
	ListAnalyses(ctx context.Context, userID int64, since time.Time, limit int) ([]Analysis, error)
	DetectPatterns(ctx context.Context, userID int64, days int) ([]Pattern, error)
	DeleteUserData(ctx context.Context, userID int64) error
}

type service struct {
	cfg        Config
	repo       Repository
	classifier Classifier
	store      Store
	logger     *slog.Logger
}

const cacheTTL = 24 * time.Hour

// NewService constructs a Service instance. classifier may be nil, in which
// case only the lexicon fallback is used.
func NewService(cfg Config, repo Repository, classifier Classifier, store Store, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		repo:       repo,
		classifier: classifier,
		store:      store,
		logger:     logger.With("component", "emotion.service"),
	}
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	specialPattern    = regexp.MustCompile(`[^\w\s.,!?;:'-]`)
	wordPattern       = regexp.MustCompile(`[^\w]`)
)

func (s *service) Analyze(ctx context.Context, userID, messageID int64, text string) (Analysis, error) {
	cleaned := preprocess(text)
	if cleaned == "" {
		return Analysis{}, apperrors.Wrap("invalid_input", "text cannot be empty", nil)
	}

	scores := s.classify(ctx, cleaned)

	dominant, topScore := scores.Dominant()
	if topScore < s.cfg.Threshold {
		dominant = "neutral"
	}

	sentimentScore, sentimentLabel := sentiment(dominant, scores)

	analysis := Analysis{
		UserID:         userID,
		MessageID:      messageID,
		Joy:            scores["joy"],
		Sadness:        scores["sadness"],
		Anger:          scores["anger"],
		Fear:           scores["fear"],
		Surprise:       scores["surprise"],
		Disgust:        scores["disgust"],
		Neutral:        scores["neutral"],
		SentimentScore: sentimentScore,
		SentimentLabel: sentimentLabel,
		Themes:         extractThemes(cleaned),
		Keywords:       extractKeywords(cleaned),
		Confidence:     topScore,
		AnalyzedAt:     time.Now().UTC(),
	}

	saved, err := s.repo.Save(ctx, analysis)
	if err != nil {
		return Analysis{}, apperrors.Wrap("emotion_error", "failed to save analysis", err)
	}
	return saved, nil
}

// classify resolves scores cache-first, then via the remote classifier, then
// via the keyword lexicon.
func (s *service) classify(ctx context.Context, cleaned string) Scores {
	key := cacheKey(cleaned)
	if s.store != nil {
		if cached, ok, err := s.store.Get(ctx, key); err == nil && ok {
			return cached
		}
	}

	var scores Scores
	if s.classifier != nil {
		remote, err := s.classifier.Classify(ctx, cleaned)
		if err != nil {
			s.logger.Warn("remote classification failed, using lexicon fallback", "error", err)
		} else {
			scores = remote
		}
	}
	if scores == nil {
		scores = lexiconClassify(cleaned)
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, scores, cacheTTL); err != nil {
			s.logger.Warn("failed to cache analysis", "error", err)
		}
	}
	return scores
}

func (s *service) ListAnalyses(ctx context.Context, userID int64, since time.Time, limit int) ([]Analysis, error) {
	analyses, err := s.repo.ListByUser(ctx, userID, since, limit)
	if err != nil {
		return nil, apperrors.Wrap("emotion_error", "failed to list analyses", err)
	}
	return analyses, nil
}

// DetectPatterns surfaces emotions scoring high in more than 30% of the
// window's analyses. At least three analyses are required.
func (s *service) DetectPatterns(ctx context.Context, userID int64, days int) ([]Pattern, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	analyses, err := s.repo.ListByUser(ctx, userID, since, 0)
	if err != nil {
		return nil, apperrors.Wrap("emotion_error", "failed to load analyses", err)
	}
	if len(analyses) < 3 {
		return nil, nil
	}

	total := len(analyses)
	frequencies := make(map[string]int)
	sums := make(map[string]float64)
	for _, analysis := range analyses {
		for label, score := range analysis.Scores() {
			sums[label] += score
			if score > 0.5 {
				frequencies[label]++
			}
		}
	}

	var patterns []Pattern
	for _, label := range Labels {
		frequency := frequencies[label]
		if float64(frequency)/float64(total) <= 0.3 {
			continue
		}
		patterns = append(patterns, Pattern{
			Name:        "recurring_" + label,
			Description: fmt.Sprintf("Recurring %s detected in %d/%d recent interactions", label, frequency, total),
			Frequency:   frequency,
			Intensity:   sums[label] / float64(total),
			Emotions:    map[string]float64{label: float64(frequency) / float64(total)},
		})
	}
	return patterns, nil
}

// DeleteUserData removes every stored analysis for the user, so emotional
// history does not outlive a deleted account.
func (s *service) DeleteUserData(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return apperrors.Wrap("emotion_error", "failed to delete analyses", err)
	}
	s.logger.Info("emotion analyses deleted", "user_id", userID)
	return nil
}

func sentiment(dominant string, scores Scores) (float64, string) {
	switch dominant {
	case "joy":
		return scores["joy"], "positive"
	case "sadness", "anger", "fear", "disgust":
		max := scores["sadness"]
		for _, label := range []string{"anger", "fear", "disgust"} {
			if scores[label] > max {
				max = scores[label]
			}
		}
		return -max, "negative"
	default:
		return 0, "neutral"
	}
}

func preprocess(text string) string {
	text = whitespacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
	return specialPattern.ReplaceAllString(text, "")
}

func cacheKey(cleaned string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(cleaned)))
	return hex.EncodeToString(sum[:])
}

var themeKeywords = map[string][]string{
	"trauma_related": {"trauma", "ptsd", "flashback", "nightmare", "trigger", "abuse", "violence", "suicide", "self-harm"},
	"relationships":  {"relationship", "family", "friend", "partner", "love", "breakup"},
	"work_career":    {"work", "job", "career", "boss", "colleague", "stress", "deadline"},
	"self_esteem":    {"confidence", "self-worth", "insecure", "doubt", "failure"},
}

// themeOrder keeps theme output deterministic.
var themeOrder = []string{"trauma_related", "relationships", "work_career", "self_esteem"}

func extractThemes(text string) []string {
	lowered := strings.ToLower(text)
	var themes []string
	for _, theme := range themeOrder {
		for _, keyword := range themeKeywords[theme] {
			if strings.Contains(lowered, keyword) {
				themes = append(themes, theme)
				break
			}
		}
	}
	return themes
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "i": {}, "you": {},
	"he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "am": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "must": {}, "that": {}, "this": {}, "what": {}, "when": {},
}

const maxKeywords = 10

func extractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(text) {
		clean := strings.ToLower(wordPattern.ReplaceAllString(word, ""))
		if len(clean) <= 3 {
			continue
		}
		if _, stop := stopWords[clean]; stop {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		keywords = append(keywords, clean)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
