package lesson

type ComplexityTier string

const (
	TierBeginner     ComplexityTier = "beginner"
	TierIntermediate ComplexityTier = "intermediate"
	TierAdvanced     ComplexityTier = "advanced"
	TierExpert       ComplexityTier = "expert"
	TierMaster       ComplexityTier = "master"
)

// LessonDNA is the static, age/tone/language independent template of a lesson.
type LessonDNA struct {
	ID               string                        `json:"lesson_id" yaml:"lesson_id" validate:"required,excludesall=:"`
	DayOfYear        int                           `json:"day_of_year,omitempty" yaml:"day_of_year" validate:"omitempty,min=1,max=366"`
	UniversalConcept string                        `json:"universal_concept" yaml:"universal_concept" validate:"required"`
	CorePrinciple    string                        `json:"core_principle" yaml:"core_principle" validate:"required"`
	LearningEssence  string                        `json:"learning_essence" yaml:"learning_essence" validate:"required"`
	AgeExpressions   map[AgeCategory]AgeExpression `json:"age_expressions" yaml:"age_expressions" validate:"required,len=5,dive,keys,oneof=early_childhood youth young_adult midlife wisdom_years,endkeys"`
	Questions        []QuestionTemplate            `json:"core_lesson_structure" yaml:"core_lesson_structure" validate:"len=3,dive"`
	Fortune          *FortuneElements              `json:"daily_fortune_elements,omitempty" yaml:"daily_fortune_elements,omitempty"`
}

type AgeExpression struct {
	ConceptName          string         `json:"concept_name" yaml:"concept_name" validate:"required"`
	CoreMetaphor         string         `json:"core_metaphor" yaml:"core_metaphor" validate:"required"`
	ComplexityLevel      ComplexityTier `json:"complexity_level" yaml:"complexity_level" validate:"required,oneof=beginner intermediate advanced expert master"`
	AttentionSpanSeconds int            `json:"attention_span_seconds" yaml:"attention_span_seconds" validate:"gt=0"`
	Vocabulary           []string       `json:"vocabulary" yaml:"vocabulary"`
	Examples             []Example      `json:"examples" yaml:"examples" validate:"dive"`
}

type Example struct {
	Scenario string `json:"scenario" yaml:"scenario" validate:"required"`
	OptionA  string `json:"option_a" yaml:"option_a"`
	OptionB  string `json:"option_b" yaml:"option_b"`
}

type QuestionTemplate struct {
	ConceptFocus       string `json:"concept_focus" yaml:"concept_focus" validate:"required"`
	UniversalPrinciple string `json:"universal_principle" yaml:"universal_principle" validate:"required"`
	OptionA            string `json:"option_a" yaml:"option_a" validate:"required"`
	OptionB            string `json:"option_b" yaml:"option_b" validate:"required"`
}

type FortuneElements struct {
	Identity   string `json:"identity" yaml:"identity"`
	Capability string `json:"capability" yaml:"capability"`
	Future     string `json:"future" yaml:"future"`
}

// QuestionCount is the number of question templates every lesson must carry.
const QuestionCount = 3
