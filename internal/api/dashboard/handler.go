// Package dashboard provides REST API handlers for the engagement dashboard.
// It exposes endpoints for the leaderboard, user statistics, badges, job
// matching, recommendations, and career path prediction.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/service/badges"
	"github.com/alumnet/engagement/internal/service/career"
	"github.com/alumnet/engagement/internal/service/engagement"
	"github.com/alumnet/engagement/internal/service/matching"
	"github.com/alumnet/engagement/internal/service/recommend"
	"github.com/alumnet/engagement/pkg/logger"
)

// EngagementService interface for score and leaderboard operations.
type EngagementService interface {
	CalculateScore(ctx context.Context, userID uint, trigger string) (*models.EngagementScore, error)
	GetLeaderboard(ctx context.Context, limit int, roleFilter string) (*engagement.Leaderboard, error)
}

// BadgeService interface for badge operations.
type BadgeService interface {
	Catalog() ([]models.Badge, error)
	UserBadges(userID uint) ([]models.UserBadge, error)
	HoldersOf(badgeName string) (*models.Badge, []models.User, error)
	CheckAndAwardBadges(ctx context.Context, userID uint) ([]models.Badge, error)
}

// MatchingService interface for pairwise job matching.
type MatchingService interface {
	MatchJob(ctx context.Context, userID, jobID uint) (*matching.JobMatch, error)
}

// RecommendService interface for top-N recommendations.
type RecommendService interface {
	RecommendJobs(ctx context.Context, userID uint, limit int) ([]matching.JobMatch, error)
	RecommendMentors(ctx context.Context, userID uint, limit int) ([]matching.MentorMatch, error)
	SimilarAlumni(ctx context.Context, userID uint, limit int) ([]recommend.SimilarAlumnus, error)
}

// CareerService interface for career path prediction.
type CareerService interface {
	PredictCareerPath(ctx context.Context, userID uint) (*career.Prediction, error)
	History(userID uint) ([]models.CareerHistory, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	engagementService EngagementService
	badgeService      BadgeService
	matchingService   MatchingService
	recommendService  RecommendService
	careerService     CareerService
	defaultLimit      int
	log               *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(
	engagementService *engagement.Service,
	badgeService *badges.Service,
	matchingService *matching.Service,
	recommendService *recommend.Service,
	careerService *career.Service,
	defaultLimit int,
	log *logger.Logger,
) *Handler {
	return &Handler{
		engagementService: engagementService,
		badgeService:      badgeService,
		matchingService:   matchingService,
		recommendService:  recommendService,
		careerService:     careerService,
		defaultLimit:      defaultLimit,
		log:               log,
	}
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	engagementService EngagementService,
	badgeService BadgeService,
	matchingService MatchingService,
	recommendService RecommendService,
	careerService CareerService,
	defaultLimit int,
	log *logger.Logger,
) *Handler {
	return &Handler{
		engagementService: engagementService,
		badgeService:      badgeService,
		matchingService:   matchingService,
		recommendService:  recommendService,
		careerService:     careerService,
		defaultLimit:      defaultLimit,
		log:               log,
	}
}

// RegisterRoutes mounts the dashboard endpoints under the given group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/leaderboard", h.GetLeaderboard)

	users := api.Group("/users/:id")
	users.GET("/stats", h.GetUserStats)
	users.GET("/badges", h.GetUserBadges)
	users.POST("/score/recompute", h.RecomputeScore)
	users.GET("/jobs/:job_id/match", h.MatchJob)
	users.GET("/recommendations/jobs", h.RecommendJobs)
	users.GET("/recommendations/mentors", h.RecommendMentors)
	users.GET("/recommendations/alumni", h.SimilarAlumni)
	users.GET("/career/prediction", h.PredictCareerPath)
	users.GET("/career/history", h.GetCareerHistory)

	api.GET("/badges", h.GetBadgeCatalog)
	api.GET("/badges/:name/holders", h.GetBadgeHolders)
}

// GetLeaderboard returns the top users by engagement score.
// GET /api/v1/leaderboard?limit=10&role=Engineer.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := h.parseLimit(c, h.defaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	roleFilter := c.Query("role")

	ctx := context.Background()
	board, err := h.engagementService.GetLeaderboard(ctx, limit, roleFilter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	h.log.Info().
		Int("limit", limit).
		Str("role", roleFilter).
		Int("entries", len(board.Entries)).
		Msg("Retrieved leaderboard")

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   board.Entries,
		"role":          roleFilter,
		"total_entries": len(board.Entries),
		"generated_at":  board.GeneratedAt,
	})
}

// GetUserStats returns the engagement score and badges for a user.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	score, err := h.engagementService.CalculateScore(ctx, userID, "api")
	if err != nil {
		if errors.Is(err, engagement.ErrUserNotFound) {
			h.errorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user statistics")
		return
	}

	userBadges, err := h.badgeService.UserBadges(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"score":        score,
		"badges":       userBadges,
		"total_badges": len(userBadges),
		"generated_at": time.Now().UTC(),
	})
}

// RecomputeScore forces a score recomputation for a user and runs the badge
// check so fresh thresholds take effect immediately.
// POST /api/v1/users/:id/score/recompute.
func (h *Handler) RecomputeScore(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	score, err := h.engagementService.CalculateScore(ctx, userID, "api")
	if err != nil {
		if errors.Is(err, engagement.ErrUserNotFound) {
			h.errorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to recompute score")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to recompute score")
		return
	}

	awarded, err := h.badgeService.CheckAndAwardBadges(ctx, userID)
	if err != nil {
		h.log.Warn().Err(err).Uint("user_id", userID).Msg("Badge check after recompute failed")
	}

	h.log.Info().
		Uint("user_id", userID).
		Float64("total", score.Total).
		Int("new_badges", len(awarded)).
		Msg("Recomputed engagement score")

	c.JSON(http.StatusOK, gin.H{
		"score":        score,
		"new_badges":   awarded,
		"generated_at": time.Now().UTC(),
	})
}

// GetUserBadges returns badges earned by a specific user.
// GET /api/v1/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userBadges, err := h.badgeService.UserBadges(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"badges":       userBadges,
		"total_badges": len(userBadges),
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeCatalog returns all available badges.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog, err := h.badgeService.Catalog()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get badge catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges":       catalog,
		"total_badges": len(catalog),
		"generated_at": time.Now().UTC(),
	})
}

// GetBadgeHolders returns users who have earned a badge, looked up by name.
// GET /api/v1/badges/:name/holders?limit=50.
func (h *Handler) GetBadgeHolders(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		h.errorResponse(c, http.StatusBadRequest, "badge name is required")
		return
	}

	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	badge, holders, err := h.badgeService.HoldersOf(name)
	if err != nil {
		h.log.Error().Err(err).Str("badge", name).Msg("Failed to get badge holders")
		h.errorResponse(c, http.StatusNotFound, "Badge not found")
		return
	}

	totalHolders := len(holders)
	if limit > 0 && len(holders) > limit {
		holders = holders[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"badge":         badge,
		"holders":       holders,
		"total_holders": totalHolders,
		"generated_at":  time.Now().UTC(),
	})
}

// MatchJob scores a user's profile against a job posting.
// GET /api/v1/users/:id/jobs/:job_id/match.
func (h *Handler) MatchJob(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := h.parseIDParam(c, "job_id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	match, err := h.matchingService.MatchJob(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, matching.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Uint("job_id", jobID).Msg("Failed to match job")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute job match")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match":        match,
		"generated_at": time.Now().UTC(),
	})
}

// RecommendJobs returns the top job recommendations for a user.
// GET /api/v1/users/:id/recommendations/jobs?limit=5.
func (h *Handler) RecommendJobs(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := h.parseLimit(c, h.defaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	matches, err := h.recommendService.RecommendJobs(ctx, userID, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "User has no profile")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to recommend jobs")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": matches,
		"generated_at":    time.Now().UTC(),
	})
}

// RecommendMentors returns the top mentor recommendations for a user.
// GET /api/v1/users/:id/recommendations/mentors?limit=5.
func (h *Handler) RecommendMentors(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := h.parseLimit(c, h.defaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	matches, err := h.recommendService.RecommendMentors(ctx, userID, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "User has no profile")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to recommend mentors")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"recommendations": matches,
		"generated_at":    time.Now().UTC(),
	})
}

// SimilarAlumni returns alumni most similar to the user.
// GET /api/v1/users/:id/recommendations/alumni?limit=5.
func (h *Handler) SimilarAlumni(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := h.parseLimit(c, h.defaultLimit)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	similar, err := h.recommendService.SimilarAlumni(ctx, userID, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "User has no profile")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to find similar alumni")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"similar":      similar,
		"generated_at": time.Now().UTC(),
	})
}

// PredictCareerPath returns the predicted next roles for a user.
// GET /api/v1/users/:id/career/prediction.
func (h *Handler) PredictCareerPath(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	prediction, err := h.careerService.PredictCareerPath(ctx, userID)
	if err != nil {
		if errors.Is(err, career.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to predict career path")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to compute prediction")
		return
	}

	h.log.Info().
		Uint("user_id", userID).
		Str("mode", prediction.Mode).
		Msg("Predicted career path")

	c.JSON(http.StatusOK, gin.H{
		"prediction":   prediction,
		"generated_at": time.Now().UTC(),
	})
}

// GetCareerHistory returns a user's career steps, oldest first.
// GET /api/v1/users/:id/career/history.
func (h *Handler) GetCareerHistory(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.careerService.History(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get career history")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve career history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      userID,
		"history":      history,
		"total_steps":  len(history),
		"generated_at": time.Now().UTC(),
	})
}

// Helper functions

// parseUserID extracts and validates the user ID from the URL parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	return h.parseIDParam(c, "id")
}

// parseIDParam extracts and validates a numeric URL parameter.
func (h *Handler) parseIDParam(c *gin.Context, name string) (uint, error) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", name, idStr)
	}
	return uint(id), nil
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
