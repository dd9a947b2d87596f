// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the alumni engagement service.
var (
	// Counters.
	ScoresRecomputedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_scores_recomputed_total",
			Help: "Total number of engagement score recomputations",
		},
		[]string{"trigger"}, // api, scheduler
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge_name", "rarity"},
	)

	LeaderboardRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_requests_total",
			Help: "Total leaderboard requests by cache outcome",
		},
		[]string{"source"}, // cache, database
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_predictions_total",
			Help: "Total career path predictions by mode",
		},
		[]string{"mode"}, // matrix, heuristic
	)

	// Gauges.
	ActiveBadgeHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_badge_holders",
			Help: "Current number of users holding each badge",
		},
		[]string{"badge_name"},
	)

	TransitionMatrixSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "career_transition_matrix_rows",
			Help: "Number of rows in the precomputed transition matrix",
		},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
	)

	// Histograms.
	EngagementScoreValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engagement_score_value",
			Help:    "Distribution of recomputed engagement score totals",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10 to ~5k points
		},
	)

	MatchScoreValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skill_match_score",
			Help:    "Distribution of skill match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11), // 0.0 to 1.0
		},
	)

	MatrixRebuildDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "career_matrix_rebuild_duration_seconds",
			Help:    "Time taken to rebuild the career transition matrix",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)
)

// RecordScoreRecomputed records an engagement score recomputation.
func RecordScoreRecomputed(trigger string, total float64) {
	ScoresRecomputedTotal.WithLabelValues(trigger).Inc()
	EngagementScoreValue.Observe(total)
}

// RecordBadgeAwarded records a badge award event.
func RecordBadgeAwarded(badgeName, rarity string) {
	BadgesAwardedTotal.WithLabelValues(badgeName, rarity).Inc()
}

// SetActiveBadgeHolders sets the number of holders for a badge.
func SetActiveBadgeHolders(badgeName string, count int) {
	ActiveBadgeHolders.WithLabelValues(badgeName).Set(float64(count))
}

// RecordLeaderboardRequest records a leaderboard request and its source.
func RecordLeaderboardRequest(source string) {
	LeaderboardRequestsTotal.WithLabelValues(source).Inc()
}

// RecordPrediction records a career prediction and which mode served it.
func RecordPrediction(mode string) {
	PredictionsTotal.WithLabelValues(mode).Inc()
}

// ObserveMatchScore observes a skill match score.
func ObserveMatchScore(score float64) {
	MatchScoreValue.Observe(score)
}

// SetTransitionMatrixSize sets the transition matrix row count.
func SetTransitionMatrixSize(rows int) {
	TransitionMatrixSize.Set(float64(rows))
}

// ObserveMatrixRebuildDuration observes a matrix rebuild duration.
func ObserveMatrixRebuildDuration(seconds float64) {
	MatrixRebuildDurationSeconds.Observe(seconds)
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
}

// SetSchedulerLastRun sets the timestamp of the last scheduler run.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}
