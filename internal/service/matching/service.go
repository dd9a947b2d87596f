// Package matching scores candidate profiles against jobs and mentors.
package matching

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	prommetrics "github.com/alumnet/engagement/internal/metrics"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/repository"
	"github.com/alumnet/engagement/internal/scoring"
	"github.com/alumnet/engagement/pkg/logger"
)

// ErrNotFound signals a missing user profile or job posting.
var ErrNotFound = errors.New("not found")

// Component weights for the aggregate job match score. Skills dominate;
// level and location refine.
var jobComponentWeights = map[string]float64{
	"skills":   0.6,
	"level":    0.25,
	"location": 0.15,
}

// Component weights for mentor/mentee compatibility.
var mentorComponentWeights = map[string]float64{
	"skills":     0.45,
	"industry":   0.2,
	"experience": 0.2,
	"location":   0.15,
}

// UserRepository interface for profile lookups.
type UserRepository interface {
	GetProfile(userID uint) (*models.Profile, error)
}

// JobRepository interface for job posting lookups.
type JobRepository interface {
	GetJob(jobID uint) (*models.JobPosting, error)
}

// JobMatch is the scored comparison of a candidate against a posting.
type JobMatch struct {
	JobID           uint                `json:"job_id"`
	Title           string              `json:"title"`
	Company         string              `json:"company"`
	Skills          scoring.MatchResult `json:"skills"`
	LevelScore      float64             `json:"level_score"`
	LocationScore   float64             `json:"location_score"`
	OverallScore    float64             `json:"overall_score"`
	OverallPercent  float64             `json:"overall_percent"`
}

// MentorMatch is the scored compatibility of a mentee with a mentor.
type MentorMatch struct {
	MentorUserID    uint                `json:"mentor_user_id"`
	Skills          scoring.MatchResult `json:"skills"`
	IndustryScore   float64             `json:"industry_score"`
	ExperienceScore float64             `json:"experience_score"`
	LocationScore   float64             `json:"location_score"`
	OverallScore    float64             `json:"overall_score"`
}

// Service scores profiles against jobs and mentors.
type Service struct {
	userRepo UserRepository
	jobRepo  JobRepository
	log      *logger.Logger
}

// NewService creates a new matching service with concrete repository types.
func NewService(userRepo *repository.UserRepository, activityRepo *repository.ActivityRepository, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, jobRepo: activityRepo, log: log}
}

// NewServiceWithInterfaces creates a new matching service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, jobRepo JobRepository, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, jobRepo: jobRepo, log: log}
}

// MatchJob scores a user's profile against a job posting.
func (s *Service) MatchJob(ctx context.Context, userID, jobID uint) (*JobMatch, error) {
	profile, err := s.userRepo.GetProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile for user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	job, err := s.jobRepo.GetJob(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	match := s.ScoreJob(profile, job)
	prommetrics.ObserveMatchScore(match.OverallScore)
	return match, nil
}

// ScoreJob scores a profile against a posting without touching storage.
func (s *Service) ScoreJob(profile *models.Profile, job *models.JobPosting) *JobMatch {
	skills := scoring.MatchSkills(profile.SkillList(), job.SkillList(), nil)
	levelScore := scoring.SkillLevelMatch(profile.SkillLevel, job.RequiredLevel)
	locationScore := locationMatch(profile.Location, job.Location)

	overall := scoring.Weighted(map[string]float64{
		"skills":   skills.MatchScore,
		"level":    levelScore,
		"location": locationScore,
	}, jobComponentWeights)

	return &JobMatch{
		JobID:          job.ID,
		Title:          job.Title,
		Company:        job.Company,
		Skills:         skills,
		LevelScore:     levelScore,
		LocationScore:  locationScore,
		OverallScore:   overall,
		OverallPercent: overall * 100,
	}
}

// ScoreMentor scores mentor/mentee compatibility. Skill overlap dominates;
// shared industry and location help, as does the mentor being more
// experienced than the mentee.
func (s *Service) ScoreMentor(mentee, mentor *models.Profile) *MentorMatch {
	skills := scoring.MatchSkills(mentor.SkillList(), mentee.SkillList(), nil)
	industryScore := termMatch(mentee.Industry, mentor.Industry)
	locationScore := locationMatch(mentee.Location, mentor.Location)
	experienceScore := experienceGapScore(mentee.ExperienceYears, mentor.ExperienceYears)

	overall := scoring.Weighted(map[string]float64{
		"skills":     skills.MatchScore,
		"industry":   industryScore,
		"experience": experienceScore,
		"location":   locationScore,
	}, mentorComponentWeights)

	return &MentorMatch{
		MentorUserID:    mentor.UserID,
		Skills:          skills,
		IndustryScore:   industryScore,
		ExperienceScore: experienceScore,
		LocationScore:   locationScore,
		OverallScore:    overall,
	}
}

// locationMatch compares locations. Either side blank is neutral 0.5 so
// sparse profiles are not penalized against every remote candidate.
func locationMatch(a, b string) float64 {
	return termMatchWithNeutral(a, b, 0.5)
}

// termMatch compares free-text labels; blank on either side scores 0.
func termMatch(a, b string) float64 {
	return termMatchWithNeutral(a, b, 0)
}

func termMatchWithNeutral(a, b string, neutral float64) float64 {
	na, nb := scoring.NormalizeTerm(a), scoring.NormalizeTerm(b)
	if na == "" || nb == "" {
		return neutral
	}
	if na == nb {
		return 1.0
	}
	return 0
}

// experienceGapScore rewards mentors 3-15 years ahead of the mentee.
// A mentor behind the mentee scores low but not zero.
func experienceGapScore(menteeYears, mentorYears int) float64 {
	gap := mentorYears - menteeYears
	switch {
	case gap >= 3 && gap <= 15:
		return 1.0
	case gap > 15:
		return 0.7
	case gap > 0:
		return 0.6
	default:
		return 0.2
	}
}
