// Package recommend produces top-N job, mentor, and alumni recommendations.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/repository"
	"github.com/alumnet/engagement/internal/scoring"
	"github.com/alumnet/engagement/internal/service/matching"
	"github.com/alumnet/engagement/pkg/logger"
)

// ErrNotFound signals a missing user profile.
var ErrNotFound = errors.New("not found")

// Similar-alumni aggregation: profile shape and skill overlap matter
// about equally, with a small boost for shared industry.
var similarityWeights = map[string]float64{
	"vector":   0.4,
	"skills":   0.4,
	"industry": 0.2,
}

// UserRepository interface for profile enumeration.
type UserRepository interface {
	GetProfile(userID uint) (*models.Profile, error)
	ListProfiles(role string) ([]models.Profile, error)
	ListMentorProfiles() ([]models.Profile, error)
}

// JobRepository interface for active posting enumeration.
type JobRepository interface {
	ActiveJobs() ([]models.JobPosting, error)
}

// ActivityRepository interface for the counters feeding profile vectors.
type ActivityRepository interface {
	CountersFor(userID uint) (*models.ActivityCounters, error)
}

// Matcher is the pairwise scoring dependency.
type Matcher interface {
	ScoreJob(profile *models.Profile, job *models.JobPosting) *matching.JobMatch
	ScoreMentor(mentee, mentor *models.Profile) *matching.MentorMatch
}

// SimilarAlumnus is one similar-alumni recommendation.
type SimilarAlumnus struct {
	UserID       uint     `json:"user_id"`
	Role         string   `json:"role,omitempty"`
	Company      string   `json:"company,omitempty"`
	Similarity   float64  `json:"similarity"`
	SharedSkills []string `json:"shared_skills"`
}

// Service produces ranked recommendations from pairwise match scores.
type Service struct {
	userRepo     UserRepository
	jobRepo      JobRepository
	activityRepo ActivityRepository
	matcher      Matcher
	log          *logger.Logger
}

// NewService creates a new recommendation service with concrete types.
func NewService(
	userRepo *repository.UserRepository,
	activityRepo *repository.ActivityRepository,
	matcher *matching.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		jobRepo:      activityRepo,
		activityRepo: activityRepo,
		matcher:      matcher,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new recommendation service with
// interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	jobRepo JobRepository,
	activityRepo ActivityRepository,
	matcher Matcher,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		activityRepo: activityRepo,
		matcher:      matcher,
		log:          log,
	}
}

func (s *Service) profileFor(userID uint) (*models.Profile, error) {
	profile, err := s.userRepo.GetProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile for user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// RecommendJobs scores every active posting against the user's profile and
// returns the top-N by overall score.
func (s *Service) RecommendJobs(ctx context.Context, userID uint, limit int) ([]matching.JobMatch, error) {
	profile, err := s.profileFor(userID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobRepo.ActiveJobs()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	matches := make([]matching.JobMatch, 0, len(jobs))
	for i := range jobs {
		matches = append(matches, *s.matcher.ScoreJob(profile, &jobs[i]))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].JobID < matches[j].JobID
	})

	return truncateJobs(matches, limit), nil
}

// RecommendMentors scores every mentor profile against the user and returns
// the top-N by compatibility. The user is never their own mentor.
func (s *Service) RecommendMentors(ctx context.Context, userID uint, limit int) ([]matching.MentorMatch, error) {
	profile, err := s.profileFor(userID)
	if err != nil {
		return nil, err
	}

	mentors, err := s.userRepo.ListMentorProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}

	matches := make([]matching.MentorMatch, 0, len(mentors))
	for i := range mentors {
		if mentors[i].UserID == userID {
			continue
		}
		matches = append(matches, *s.matcher.ScoreMentor(profile, &mentors[i]))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OverallScore != matches[j].OverallScore {
			return matches[i].OverallScore > matches[j].OverallScore
		}
		return matches[i].MentorUserID < matches[j].MentorUserID
	})

	return truncateMentors(matches, limit), nil
}

// SimilarAlumni finds profiles most similar to the user's, combining the
// cosine of profile feature vectors, skill overlap, and industry.
func (s *Service) SimilarAlumni(ctx context.Context, userID uint, limit int) ([]SimilarAlumnus, error) {
	profile, err := s.profileFor(userID)
	if err != nil {
		return nil, err
	}

	all, err := s.userRepo.ListProfiles("")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	baseVec, err := s.vectorFor(profile)
	if err != nil {
		return nil, err
	}
	baseSkills := profile.SkillList()

	similar := make([]SimilarAlumnus, 0, len(all))
	for i := range all {
		other := &all[i]
		if other.UserID == userID {
			continue
		}

		otherVec, err := s.vectorFor(other)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", other.UserID).Msg("Skipping profile in similarity scan")
			continue
		}

		skills := scoring.MatchSkills(baseSkills, other.SkillList(), nil)
		industry := 0.0
		if scoring.NormalizeTerm(profile.Industry) != "" &&
			scoring.NormalizeTerm(profile.Industry) == scoring.NormalizeTerm(other.Industry) {
			industry = 1.0
		}

		similarity := scoring.Weighted(map[string]float64{
			"vector":   scoring.Cosine(baseVec, otherVec),
			"skills":   skills.MatchScore,
			"industry": industry,
		}, similarityWeights)

		shared := skills.MatchingSkills
		if shared == nil {
			shared = []string{}
		}
		similar = append(similar, SimilarAlumnus{
			UserID:       other.UserID,
			Role:         other.CurrentRole,
			Company:      other.Company,
			Similarity:   similarity,
			SharedSkills: shared,
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Similarity != similar[j].Similarity {
			return similar[i].Similarity > similar[j].Similarity
		}
		return similar[i].UserID < similar[j].UserID
	})

	if limit > 0 && len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

// vectorFor builds the [0,1]-scaled feature vector for a profile,
// augmented with the user's activity counters.
func (s *Service) vectorFor(profile *models.Profile) ([]float64, error) {
	counters, err := s.activityRepo.CountersFor(profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate counters: %w", err)
	}

	return scoring.ProfileVector(scoring.ProfileFeatures{
		Completeness:    profile.Completeness,
		SkillCount:      len(profile.SkillList()),
		ExperienceYears: profile.ExperienceYears,
		GraduationYear:  profile.GraduationYear,
		EventsAttended:  counters.EventsAttended,
		ForumPosts:      counters.ForumPosts,
	}), nil
}

func truncateJobs(matches []matching.JobMatch, limit int) []matching.JobMatch {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func truncateMentors(matches []matching.MentorMatch, limit int) []matching.MentorMatch {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
