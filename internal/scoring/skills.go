package scoring

import (
	"math"
	"sort"
)

// Skill proficiency levels, weakest first.
var skillLevels = []string{"beginner", "intermediate", "advanced", "expert"}

// MatchResult describes how a candidate's skill set compares to a
// required skill set.
type MatchResult struct {
	MatchScore      float64  `json:"match_score"`      // 0..1, rounded to 4 decimals
	MatchingSkills  []string `json:"matching_skills"`  // normalized, sorted
	MissingSkills   []string `json:"missing_skills"`   // normalized, sorted
	MatchPercentage float64  `json:"match_percentage"` // score*100, rounded to 2 decimals
}

// MatchSkills compares a candidate's skills against required skills.
// Both lists are normalized to lowercase trimmed sets before comparison.
//
// Without weights the score is the Jaccard similarity of the two sets.
// With weights the score is the weight sum of required skills the candidate
// has, divided by the weight sum of all required skills; skills absent from
// the weight map default to weight 1.0.
func MatchSkills(userSkills, requiredSkills []string, weights map[string]float64) MatchResult {
	userSet := NormalizeSet(userSkills)
	requiredSet := NormalizeSet(requiredSkills)

	matching := make([]string, 0, len(requiredSet))
	missing := make([]string, 0, len(requiredSet))
	for skill := range requiredSet {
		if _, ok := userSet[skill]; ok {
			matching = append(matching, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	sort.Strings(matching)
	sort.Strings(missing)

	var score float64
	if len(weights) > 0 {
		score = weightedSkillScore(userSet, requiredSet, weights)
	} else {
		score = Jaccard(userSkills, requiredSkills)
	}

	return MatchResult{
		MatchScore:      roundTo(score, 4),
		MatchingSkills:  matching,
		MissingSkills:   missing,
		MatchPercentage: roundTo(score*100, 2),
	}
}

// weightedSkillScore computes (weight of required skills present) / (weight
// of all required skills), with default weight 1.0 per unweighted skill.
func weightedSkillScore(userSet, requiredSet map[string]struct{}, weights map[string]float64) float64 {
	normWeights := make(map[string]float64, len(weights))
	for k, w := range weights {
		normWeights[NormalizeTerm(k)] = w
	}

	var total, matched float64
	for skill := range requiredSet {
		w, ok := normWeights[skill]
		if !ok {
			w = 1.0
		}
		total += w
		if _, has := userSet[skill]; has {
			matched += w
		}
	}

	if total == 0 {
		return 0
	}
	return matched / total
}

// SkillLevelMatch compares ordinal proficiency labels. A candidate at or
// above the required level scores 1.0; each level short reduces the score
// (0.7, 0.4, then 0.2). Unrecognized labels on either side score 0.5
// rather than erroring.
func SkillLevelMatch(userLevel, requiredLevel string) float64 {
	userIdx := levelIndex(userLevel)
	requiredIdx := levelIndex(requiredLevel)
	if userIdx < 0 || requiredIdx < 0 {
		return 0.5
	}

	switch gap := requiredIdx - userIdx; {
	case gap <= 0:
		return 1.0
	case gap == 1:
		return 0.7
	case gap == 2:
		return 0.4
	default:
		return 0.2
	}
}

func levelIndex(level string) int {
	n := NormalizeTerm(level)
	for i, l := range skillLevels {
		if l == n {
			return i
		}
	}
	return -1
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
