// Package lessontest holds fixtures shared by tests across packages.
package lessontest

import (
	"fmt"

	"github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

// DNA returns a small but complete lesson template.
func DNA(id string) *lesson.LessonDNA {
	exprs := map[lesson.AgeCategory]lesson.AgeExpression{}
	tiers := []lesson.ComplexityTier{lesson.TierBeginner, lesson.TierIntermediate, lesson.TierAdvanced, lesson.TierExpert, lesson.TierMaster}
	spans := []int{180, 300, 360, 360, 360}
	for i, c := range lesson.AgeCategories {
		exprs[c] = lesson.AgeExpression{
			ConceptName:          fmt.Sprintf("Concept for %s", c),
			CoreMetaphor:         fmt.Sprintf("Metaphor for %s", c),
			ComplexityLevel:      tiers[i],
			AttentionSpanSeconds: spans[i],
			Vocabulary:           []string{"wave", "echo"},
			Examples: []lesson.Example{
				{Scenario: fmt.Sprintf("Scenario %s one", c), OptionA: "a", OptionB: "b"},
				{Scenario: fmt.Sprintf("Scenario %s two", c), OptionA: "a", OptionB: "b"},
			},
		}
	}
	return &lesson.LessonDNA{
		ID:               id,
		DayOfYear:        192,
		UniversalConcept: "acoustics",
		CorePrinciple:    "sound_physics_enables_communication",
		LearningEssence:  "Sound is everywhere.",
		AgeExpressions:   exprs,
		Questions: []lesson.QuestionTemplate{
			{ConceptFocus: "sound_wave_basics", UniversalPrinciple: "Sound travels as waves", OptionA: "Like ripples", OptionB: "It stays put"},
			{ConceptFocus: "acoustic_design", UniversalPrinciple: "Materials shape sound", OptionA: "Soft absorbs", OptionB: "Size only"},
			{ConceptFocus: "accessibility_technology", UniversalPrinciple: "Sound science helps everyone", OptionA: "Hearing aids", OptionB: "Replace hearing"},
		},
	}
}
