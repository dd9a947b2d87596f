package badges

import (
	"encoding/json"
	"strconv"

	"github.com/alumnet/engagement/internal/models"
)

// Metric names usable in badge criteria.
const (
	MetricProfileCompleteness = "profile_completeness"
	MetricMentorshipSessions  = "mentorship_sessions"
	MetricJobApplications     = "job_applications"
	MetricEventsAttended      = "events_attended"
	MetricForumPosts          = "forum_posts"
	MetricForumComments       = "forum_comments"
	MetricEngagementScore     = "engagement_score"
	MetricBadgeCount          = "badge_count"
)

// EvaluateCriteria evaluates a badge requirement predicate against a metric
// snapshot. Unknown metrics and malformed values evaluate false, never error:
// a badge with a bad predicate is simply unearnable until fixed.
func EvaluateCriteria(criteria models.BadgeCriteria, metrics map[string]float64) bool {
	actual, ok := metrics[criteria.Metric]
	if !ok {
		return false
	}

	expected, ok := toFloat(criteria.Value)
	if !ok {
		return false
	}

	switch criteria.Operator {
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected
	case "==":
		return actual == expected
	default:
		return false
	}
}

// ParseCriteria decodes the stored criteria JSON for a badge.
func ParseCriteria(raw json.RawMessage) (models.BadgeCriteria, error) {
	var criteria models.BadgeCriteria
	err := json.Unmarshal(raw, &criteria)
	return criteria, err
}

// toFloat coerces the untyped criteria value. JSON numbers arrive as
// float64; YAML-seeded config may deliver ints or numeric strings.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
