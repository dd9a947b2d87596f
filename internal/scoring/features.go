package scoring

import (
	"strings"
	"unicode"
)

// Feature keys produced by TextFeatures. The set is fixed so downstream
// weight maps can rely on it.
const (
	FeatureLength        = "length"
	FeatureWordCount     = "word_count"
	FeatureAvgWordLength = "avg_word_length"
	FeatureUniqueRatio   = "unique_ratio"
	FeatureDigitRatio    = "digit_ratio"
)

// TextFeatures extracts a fixed-size numeric feature map from free text.
// Empty or whitespace-only input yields all-zero features.
func TextFeatures(text string) map[string]float64 {
	features := map[string]float64{
		FeatureLength:        0,
		FeatureWordCount:     0,
		FeatureAvgWordLength: 0,
		FeatureUniqueRatio:   0,
		FeatureDigitRatio:    0,
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return features
	}

	runes := []rune(trimmed)
	features[FeatureLength] = float64(len(runes))

	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	features[FeatureDigitRatio] = float64(digits) / float64(len(runes))

	words := strings.Fields(strings.ToLower(trimmed))
	features[FeatureWordCount] = float64(len(words))

	if len(words) > 0 {
		var totalLen int
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			totalLen += len([]rune(w))
			unique[w] = struct{}{}
		}
		features[FeatureAvgWordLength] = float64(totalLen) / float64(len(words))
		features[FeatureUniqueRatio] = float64(len(unique)) / float64(len(words))
	}

	return features
}

// ProfileFeatures are the raw inputs to a profile feature vector.
type ProfileFeatures struct {
	Completeness    float64 // 0..100
	SkillCount      int
	ExperienceYears int
	GraduationYear  int
	EventsAttended  int
	ForumPosts      int
}

// Reference scales for ProfileVector components. Values past the scale
// saturate at 1.0.
const (
	maxSkillCount      = 20.0
	maxExperienceYears = 40.0
	maxEventsAttended  = 50.0
	maxForumPosts      = 200.0
	minGraduationYear  = 1970.0
	maxGraduationYear  = 2030.0
)

// ProfileVector turns a profile record into a fixed-length vector with
// components scaled to [0,1], suitable for Cosine comparison.
func ProfileVector(p ProfileFeatures) []float64 {
	return []float64{
		Clamp01(MinMax(p.Completeness, 0, 100)),
		Clamp01(MinMax(float64(p.SkillCount), 0, maxSkillCount)),
		Clamp01(MinMax(float64(p.ExperienceYears), 0, maxExperienceYears)),
		Clamp01(MinMax(float64(p.GraduationYear), minGraduationYear, maxGraduationYear)),
		Clamp01(MinMax(float64(p.EventsAttended), 0, maxEventsAttended)),
		Clamp01(MinMax(float64(p.ForumPosts), 0, maxForumPosts)),
	}
}
