package lesson

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type SynthesizerDeps struct {
	Log       *logger.Logger
	Localizer Localizer
	// Now stamps generated_at. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Input is everything a variation depends on besides the DNA itself.
type Input struct {
	Key      domain.VariationKey
	Category domain.AgeCategory
}

// Synthesizer turns static DNA plus the three axes into a LessonVariation.
// It is pure apart from the generated_at timestamp.
type Synthesizer struct {
	log       *logger.Logger
	localizer Localizer
	now       func() time.Time
}

func NewSynthesizer(deps SynthesizerDeps) *Synthesizer {
	s := &Synthesizer{
		log:       deps.Log,
		localizer: deps.Localizer,
		now:       deps.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.With("module", "LessonSynthesizer")
	if s.localizer == nil {
		s.localizer = PassthroughLocalizer{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

var questionLeads = [domain.QuestionCount]string{
	"Let's start with a question about",
	"Now let's explore",
	"Finally, let's think about",
}

var questionTypes = [domain.QuestionCount]domain.ScriptType{
	domain.ScriptQuestion1,
	domain.ScriptQuestion2,
	domain.ScriptQuestion3,
}

func (s *Synthesizer) Synthesize(dna *domain.LessonDNA, in Input) (*domain.LessonVariation, error) {
	if dna == nil {
		return nil, domain.LessonNotFound(in.Key.LessonID)
	}
	expr, ok := dna.AgeExpressions[in.Category]
	if !ok {
		return nil, domain.MissingAgeExpression(dna.ID, in.Category)
	}
	if len(dna.Questions) != domain.QuestionCount {
		return nil, &domain.SynthesisError{
			LessonID: dna.ID,
			Err:      fmt.Errorf("%w: want %d, got %d", domain.ErrQuestionCount, domain.QuestionCount, len(dna.Questions)),
		}
	}

	profile := domain.ProfileFor(in.Key.Tone)
	segDuration := expr.AttentionSpanSeconds / 60

	scripts := make([]domain.ScriptSegment, 0, domain.SegmentCount)
	scripts = append(scripts, domain.ScriptSegment{
		ScriptNumber: 1,
		ScriptType:   domain.ScriptOpening,
		VoiceText: fmt.Sprintf("%s Today we're exploring %s. %s. %s",
			domain.Phrase(profile.Openings, 0), expr.ConceptName, expr.CoreMetaphor, dna.LearningEssence),
		OnScreenText:    fmt.Sprintf("Welcome to Today's Lesson\n\n%s\n\n%s", expr.ConceptName, expr.CoreMetaphor),
		DurationSeconds: segDuration,
	})
	for i, q := range dna.Questions {
		scripts = append(scripts, domain.ScriptSegment{
			ScriptNumber: i + 2,
			ScriptType:   questionTypes[i],
			VoiceText: fmt.Sprintf("%s %s %s. %s. Here's the question: %s or %s?",
				domain.Phrase(profile.Transitions, i), questionLeads[i], q.ConceptFocus, q.UniversalPrinciple, q.OptionA, q.OptionB),
			OnScreenText: fmt.Sprintf("Question %d of %d\n\n%s\n\nPrinciple: %s\n\nA) %s\n\nB) %s",
				i+1, domain.QuestionCount, strings.ToUpper(humanize(q.ConceptFocus)), q.UniversalPrinciple, q.OptionA, q.OptionB),
			DurationSeconds: segDuration,
		})
	}
	fortune := fortuneElements(dna)
	scripts = append(scripts, domain.ScriptSegment{
		ScriptNumber: domain.SegmentCount,
		ScriptType:   domain.ScriptFortune,
		VoiceText: strings.Join([]string{
			domain.Phrase(profile.Closings, 0), fortune.Identity, fortune.Capability, fortune.Future,
		}, " "),
		OnScreenText: fmt.Sprintf("Your Daily Fortune\n\nCongratulations! You've completed today's lesson on %s.\n\n%s\n\nRemember: %s",
			dna.UniversalConcept, fortune.Identity, humanize(dna.CorePrinciple)),
		DurationSeconds: segDuration,
	})

	localized, err := s.localizer.Localize(in.Key.Language, scripts)
	if err != nil {
		return nil, &domain.SynthesisError{LessonID: dna.ID, Err: fmt.Errorf("localize %s: %w", in.Key.Language, err)}
	}

	applications := make([]string, 0, len(expr.Examples))
	for _, ex := range expr.Examples {
		applications = append(applications, ex.Scenario)
	}

	v := &domain.LessonVariation{
		Key:      in.Key.String(),
		LessonID: dna.ID,
		Metadata: domain.LessonMetadata{
			Title:       expr.ConceptName,
			Objective:   objective(dna, expr),
			Duration:    expr.AttentionSpanSeconds,
			Complexity:  expr.ComplexityLevel,
			AgeTarget:   in.Key.Age,
			AgeCategory: in.Category,
			Tone:        in.Key.Tone,
			Language:    in.Key.Language,
			LessonDate:  in.Key.Date.Format(domain.DateLayout),
			DayOfYear:   in.Key.Date.YearDay(),
			Localized:   localized.Localized,
			GeneratedAt: s.now(),
		},
		Scripts: localized.Scripts,
		ProductionNotes: domain.ProductionNotes{
			VoicePersonality:       profile.VoiceCharacter,
			KeyThemes:              []string{dna.UniversalConcept, dna.CorePrinciple},
			DifficultyProgression:  string(expr.ComplexityLevel),
			RealWorldApplications:  applications,
			CulturalConsiderations: fmt.Sprintf("Adapted for %s cultural context", in.Key.Language),
			AgeSpecificNotes:       fmt.Sprintf("Adapted for %s (%d years old)", in.Category, in.Key.Age),
			ConversationFlow:       profile.InteractionStyle,
		},
	}
	s.log.Debug("Synthesized variation", "variation_key", v.Key, "segments", len(v.Scripts), "localized", localized.Localized)
	return v, nil
}

func objective(dna *domain.LessonDNA, expr domain.AgeExpression) string {
	return fmt.Sprintf("Understand %s while exploring how %s - adapted for %s level.",
		dna.UniversalConcept, humanize(dna.CorePrinciple), expr.ComplexityLevel)
}

func fortuneElements(dna *domain.LessonDNA) domain.FortuneElements {
	f := domain.FortuneElements{
		Identity:   "You are someone who understands how the world works and uses that knowledge to help others.",
		Capability: fmt.Sprintf("You can apply %s to solve real problems and make life better for people.", dna.UniversalConcept),
		Future:     fmt.Sprintf("Remember: %s.", humanize(dna.CorePrinciple)),
	}
	if dna.Fortune == nil {
		return f
	}
	if v := strings.TrimSpace(dna.Fortune.Identity); v != "" {
		f.Identity = v
	}
	if v := strings.TrimSpace(dna.Fortune.Capability); v != "" {
		f.Capability = v
	}
	if v := strings.TrimSpace(dna.Fortune.Future); v != "" {
		f.Future = v
	}
	return f
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
