// Package career provides rule-based career path prediction over a
// precomputed role transition matrix.
package career

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/cache"
	"github.com/alumnet/engagement/internal/config"
	prommetrics "github.com/alumnet/engagement/internal/metrics"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/repository"
	"github.com/alumnet/engagement/internal/scoring"
	"github.com/alumnet/engagement/pkg/logger"
)

// Sentinel errors for prediction requests.
var (
	ErrNotFound         = errors.New("not found")
	ErrInsufficientData = errors.New("insufficient transition data")
)

// Prediction modes.
const (
	ModeMatrix    = "matrix"
	ModeHeuristic = "heuristic"
)

const maxSimilarAlumni = 5

// CareerRepository interface for history and matrix persistence.
type CareerRepository interface {
	GetHistory(userID uint) ([]models.CareerHistory, error)
	GetAllHistories() ([]models.CareerHistory, error)
	ReplaceTransitions(transitions []models.CareerTransition) error
	GetTransitionsFrom(fromRole string) ([]models.CareerTransition, error)
	TotalTransitionCount() (int64, error)
	UsersWithTransition(fromRole, toRole string) ([]uint, error)
}

// UserRepository interface for profile lookups.
type UserRepository interface {
	GetProfile(userID uint) (*models.Profile, error)
}

// PathSuggestion is one predicted next role.
type PathSuggestion struct {
	Role              string   `json:"role"`
	Probability       float64  `json:"probability"`
	Count             int      `json:"count,omitempty"`
	AvgDurationDays   float64  `json:"avg_duration_days,omitempty"`
	RecommendedSkills []string `json:"recommended_skills"`
	SimilarAlumni     []uint   `json:"similar_alumni,omitempty"`
}

// Prediction is the full career path prediction for a user.
type Prediction struct {
	UserID      uint             `json:"user_id"`
	CurrentRole string           `json:"current_role"`
	Mode        string           `json:"mode"` // matrix or heuristic
	Suggestions []PathSuggestion `json:"suggestions"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Service predicts career paths and rebuilds the transition matrix.
type Service struct {
	careerRepo     CareerRepository
	userRepo       UserRepository
	cache          cache.Cache
	minTransitions int
	maxSuggestions int
	cacheTTL       time.Duration
	log            *logger.Logger
}

// NewService creates a new career service with concrete repository types.
func NewService(
	careerRepo *repository.CareerRepository,
	userRepo *repository.UserRepository,
	c cache.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		careerRepo:     careerRepo,
		userRepo:       userRepo,
		cache:          c,
		minTransitions: cfg.Prediction.MinTransitions,
		maxSuggestions: cfg.Prediction.MaxSuggestions,
		cacheTTL:       cfg.Prediction.PredictionTTL(),
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new career service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	careerRepo CareerRepository,
	userRepo UserRepository,
	c cache.Cache,
	minTransitions, maxSuggestions int,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		careerRepo:     careerRepo,
		userRepo:       userRepo,
		cache:          c,
		minTransitions: minTransitions,
		maxSuggestions: maxSuggestions,
		cacheTTL:       cacheTTL,
		log:            log,
	}
}

// PredictCareerPath predicts likely next roles for a user. Matrix-backed
// when enough transitions have been observed system-wide; otherwise a
// generic heuristic ladder, which is a degraded answer, not an error.
func (s *Service) PredictCareerPath(ctx context.Context, userID uint) (*Prediction, error) {
	key := fmt.Sprintf("prediction:%d", userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var prediction Prediction
			if err := json.Unmarshal([]byte(cached), &prediction); err == nil {
				return &prediction, nil
			}
		}
	}

	profile, err := s.userRepo.GetProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile for user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	currentRole := strings.TrimSpace(profile.CurrentRole)
	if currentRole == "" {
		return nil, fmt.Errorf("%w: user %d has no current role", ErrNotFound, userID)
	}

	prediction := &Prediction{
		UserID:      userID,
		CurrentRole: currentRole,
		GeneratedAt: time.Now().UTC(),
	}

	suggestions, err := s.matrixSuggestions(userID, profile, currentRole)
	switch {
	case err == nil:
		prediction.Mode = ModeMatrix
		prediction.Suggestions = suggestions
	case errors.Is(err, ErrInsufficientData):
		prediction.Mode = ModeHeuristic
		prediction.Suggestions = s.heuristicSuggestions(profile, currentRole)
	default:
		return nil, err
	}

	prommetrics.RecordPrediction(prediction.Mode)
	s.log.Debug().
		Uint("user_id", userID).
		Str("mode", prediction.Mode).
		Int("suggestions", len(prediction.Suggestions)).
		Msg("Career path predicted")

	if s.cache != nil {
		if payload, err := json.Marshal(prediction); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache prediction")
			}
		}
	}

	return prediction, nil
}

// matrixSuggestions builds suggestions from the transition matrix. Returns
// ErrInsufficientData when the matrix cannot answer for this role.
func (s *Service) matrixSuggestions(userID uint, profile *models.Profile, currentRole string) ([]PathSuggestion, error) {
	total, err := s.careerRepo.TotalTransitionCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count transitions: %w", err)
	}
	if total < int64(s.minTransitions) {
		return nil, fmt.Errorf("%w: %d observed, %d required", ErrInsufficientData, total, s.minTransitions)
	}

	transitions, err := s.careerRepo.GetTransitionsFrom(currentRole)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions: %w", err)
	}
	if len(transitions) == 0 {
		return nil, fmt.Errorf("%w: no observed transitions from %q", ErrInsufficientData, currentRole)
	}

	if s.maxSuggestions > 0 && len(transitions) > s.maxSuggestions {
		transitions = transitions[:s.maxSuggestions]
	}

	userSkills := scoring.NormalizeSet(profile.SkillList())
	suggestions := make([]PathSuggestion, 0, len(transitions))
	for _, tr := range transitions {
		alumni, err := s.careerRepo.UsersWithTransition(tr.FromRole, tr.ToRole)
		if err != nil {
			s.log.Warn().Err(err).Str("to_role", tr.ToRole).Msg("Failed to find transition alumni")
		}

		suggestions = append(suggestions, PathSuggestion{
			Role:              tr.ToRole,
			Probability:       tr.Probability,
			Count:             tr.Count,
			AvgDurationDays:   tr.AvgDurationDays,
			RecommendedSkills: missingSkills(tr.CommonSkillList(), userSkills),
			SimilarAlumni:     filterAlumni(alumni, userID, maxSimilarAlumni),
		})
	}
	return suggestions, nil
}

// heuristicSuggestions produces a generic seniority ladder when the matrix
// is too sparse to answer.
func (s *Service) heuristicSuggestions(profile *models.Profile, currentRole string) []PathSuggestion {
	userSkills := scoring.NormalizeSet(profile.SkillList())
	growthSkills := []string{"leadership", "mentoring", "communication"}

	lower := strings.ToLower(currentRole)
	var ladder []string
	switch {
	case strings.Contains(lower, "senior"):
		base := strings.TrimSpace(strings.TrimPrefix(currentRole, "Senior"))
		ladder = []string{"Lead " + base, base + " Manager", "Principal " + base}
	case strings.Contains(lower, "lead") || strings.Contains(lower, "manager"):
		ladder = []string{"Director", "Head of Department", "VP"}
	default:
		ladder = []string{"Senior " + currentRole, currentRole + " Lead", currentRole + " Manager"}
	}

	probabilities := []float64{0.5, 0.3, 0.2}
	suggestions := make([]PathSuggestion, 0, len(ladder))
	for i, role := range ladder {
		suggestions = append(suggestions, PathSuggestion{
			Role:              role,
			Probability:       probabilities[i],
			RecommendedSkills: missingSkills(growthSkills, userSkills),
		})
	}
	return suggestions
}

// missingSkills returns the normalized skills from recommended that the
// user does not already have, sorted.
func missingSkills(recommended []string, userSkills map[string]struct{}) []string {
	out := make([]string, 0, len(recommended))
	for skill := range scoring.NormalizeSet(recommended) {
		if _, has := userSkills[skill]; !has {
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

// filterAlumni drops the requesting user and caps the list.
func filterAlumni(ids []uint, userID uint, limit int) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == userID {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}

// RebuildTransitionMatrix recomputes the transition matrix from scratch out
// of all career histories and swaps it in atomically.
func (s *Service) RebuildTransitionMatrix(ctx context.Context) (int, error) {
	start := time.Now()

	histories, err := s.careerRepo.GetAllHistories()
	if err != nil {
		return 0, fmt.Errorf("failed to load career histories: %w", err)
	}

	type key struct{ from, to string }
	type agg struct {
		count        int
		durationDays float64
		userIDs      []uint
	}

	counts := make(map[key]*agg)
	fromTotals := make(map[string]int)

	var prev *models.CareerHistory
	for i := range histories {
		h := &histories[i]
		if prev != nil && prev.UserID == h.UserID && prev.Role != h.Role {
			k := key{from: prev.Role, to: h.Role}
			a, ok := counts[k]
			if !ok {
				a = &agg{}
				counts[k] = a
			}
			a.count++
			a.durationDays += h.StartedAt.Sub(prev.StartedAt).Hours() / 24
			a.userIDs = append(a.userIDs, h.UserID)
			fromTotals[prev.Role]++
		}
		prev = h
	}

	rebuiltAt := time.Now().UTC()
	transitions := make([]models.CareerTransition, 0, len(counts))
	for k, a := range counts {
		transitions = append(transitions, models.CareerTransition{
			FromRole:        k.from,
			ToRole:          k.to,
			Count:           a.count,
			Probability:     float64(a.count) / float64(fromTotals[k.from]),
			AvgDurationDays: a.durationDays / float64(a.count),
			CommonSkills:    strings.Join(s.commonSkills(a.userIDs), ","),
			RebuiltAt:       rebuiltAt,
		})
	}

	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].FromRole != transitions[j].FromRole {
			return transitions[i].FromRole < transitions[j].FromRole
		}
		return transitions[i].ToRole < transitions[j].ToRole
	})

	if err := s.careerRepo.ReplaceTransitions(transitions); err != nil {
		return 0, fmt.Errorf("failed to replace transitions: %w", err)
	}

	prommetrics.SetTransitionMatrixSize(len(transitions))
	prommetrics.ObserveMatrixRebuildDuration(time.Since(start).Seconds())
	s.log.Info().
		Int("rows", len(transitions)).
		Dur("took", time.Since(start)).
		Msg("Transition matrix rebuilt")

	return len(transitions), nil
}

// commonSkills finds skills held by at least half of the users who made a
// transition, most common first, capped at five.
func (s *Service) commonSkills(userIDs []uint) []string {
	if len(userIDs) == 0 {
		return nil
	}

	freq := make(map[string]int)
	for _, id := range userIDs {
		profile, err := s.userRepo.GetProfile(id)
		if err != nil {
			continue
		}
		for skill := range scoring.NormalizeSet(profile.SkillList()) {
			freq[skill]++
		}
	}

	threshold := (len(userIDs) + 1) / 2
	skills := make([]string, 0, len(freq))
	for skill, n := range freq {
		if n >= threshold {
			skills = append(skills, skill)
		}
	}
	sort.Slice(skills, func(i, j int) bool {
		if freq[skills[i]] != freq[skills[j]] {
			return freq[skills[i]] > freq[skills[j]]
		}
		return skills[i] < skills[j]
	})

	if len(skills) > 5 {
		skills = skills[:5]
	}
	return skills
}

// History returns a user's career steps, oldest first.
func (s *Service) History(userID uint) ([]models.CareerHistory, error) {
	return s.careerRepo.GetHistory(userID)
}
