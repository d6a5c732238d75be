package lesson

import domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"

type Localized struct {
	Scripts   []domain.ScriptSegment
	Localized bool
}

// Localizer adapts script text to a language. Implementations must keep the
// segment count and order.
type Localizer interface {
	Localize(language string, scripts []domain.ScriptSegment) (Localized, error)
}

// PassthroughLocalizer records the language without translating. Every
// variation it touches reports localized=false.
type PassthroughLocalizer struct{}

func (PassthroughLocalizer) Localize(_ string, scripts []domain.ScriptSegment) (Localized, error) {
	return Localized{Scripts: scripts, Localized: false}, nil
}
