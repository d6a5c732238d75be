package lesson

import "time"

type ScriptType string

const (
	ScriptOpening   ScriptType = "opening"
	ScriptQuestion1 ScriptType = "question_1"
	ScriptQuestion2 ScriptType = "question_2"
	ScriptQuestion3 ScriptType = "question_3"
	ScriptFortune   ScriptType = "fortune"
)

// SegmentCount is opening + three questions + fortune.
const SegmentCount = 5

// LessonVariation is one resolved (lesson, date, age, tone, language) rendition.
type LessonVariation struct {
	Key             string          `json:"variation_key"`
	LessonID        string          `json:"lesson_id"`
	Metadata        LessonMetadata  `json:"lesson_metadata"`
	Scripts         []ScriptSegment `json:"scripts"`
	AudioURL        *string         `json:"audio_url"`
	VideoURL        *string         `json:"video_url"`
	ProductionNotes ProductionNotes `json:"production_notes"`
}

type LessonMetadata struct {
	Title       string         `json:"title"`
	Objective   string         `json:"objective"`
	Duration    int            `json:"duration"`
	Complexity  ComplexityTier `json:"complexity"`
	AgeTarget   int            `json:"age_target"`
	AgeCategory AgeCategory    `json:"age_category"`
	Tone        Tone           `json:"tone"`
	Language    string         `json:"language"`
	LessonDate  string         `json:"lesson_date"`
	DayOfYear   int            `json:"day_of_year"`
	Localized   bool           `json:"localized"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type ScriptSegment struct {
	ScriptNumber    int        `json:"script_number"`
	ScriptType      ScriptType `json:"script_type"`
	VoiceText       string     `json:"voice_text"`
	OnScreenText    string     `json:"on_screen_text"`
	DurationSeconds int        `json:"duration_seconds"`
}

type ProductionNotes struct {
	VoicePersonality       string   `json:"voice_personality"`
	KeyThemes              []string `json:"key_themes"`
	DifficultyProgression  string   `json:"difficulty_progression"`
	RealWorldApplications  []string `json:"real_world_applications"`
	CulturalConsiderations string   `json:"cultural_considerations"`
	AgeSpecificNotes       string   `json:"age_specific_notes"`
	ConversationFlow       string   `json:"conversation_flow"`
}

// Segment returns the script with the given 1-based number.
func (v *LessonVariation) Segment(number int) (ScriptSegment, bool) {
	if v == nil {
		return ScriptSegment{}, false
	}
	for _, s := range v.Scripts {
		if s.ScriptNumber == number {
			return s, true
		}
	}
	return ScriptSegment{}, false
}
