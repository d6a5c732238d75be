package lesson

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	KeySeparator = ":"
	DateLayout   = "2006-01-02"
)

// VariationKey identifies one variation. Its string form is
// lessonId:YYYY-MM-DD:age:tone:language.
type VariationKey struct {
	LessonID string
	Date     time.Time
	Age      int
	Tone     Tone
	Language string
}

// BuildKey normalizes the components and rejects any that cannot round-trip.
func BuildKey(lessonID string, date time.Time, age int, tone Tone, language string) (VariationKey, error) {
	k := VariationKey{
		LessonID: strings.TrimSpace(lessonID),
		Date:     CivilDate(date),
		Age:      age,
		Tone:     Tone(strings.ToLower(strings.TrimSpace(string(tone)))),
		Language: NormalizeLanguage(language),
	}
	// Checked in key order so the reported field is stable.
	for _, c := range []struct{ field, value string }{
		{"lessonId", k.LessonID},
		{"tone", string(k.Tone)},
		{"language", k.Language},
	} {
		if c.value == "" {
			return VariationKey{}, fmt.Errorf("%w: %s is empty", ErrMalformedKey, c.field)
		}
		if strings.Contains(c.value, KeySeparator) {
			return VariationKey{}, fmt.Errorf("%w: %s contains %q", ErrMalformedKey, c.field, KeySeparator)
		}
	}
	return k, nil
}

func (k VariationKey) String() string {
	return strings.Join([]string{
		k.LessonID,
		k.Date.Format(DateLayout),
		strconv.Itoa(k.Age),
		string(k.Tone),
		k.Language,
	}, KeySeparator)
}

// ParseKey is the inverse of VariationKey.String.
func ParseKey(raw string) (VariationKey, error) {
	parts := strings.Split(strings.TrimSpace(raw), KeySeparator)
	if len(parts) != 5 {
		return VariationKey{}, fmt.Errorf("%w: want 5 components, got %d", ErrMalformedKey, len(parts))
	}
	date, err := time.Parse(DateLayout, parts[1])
	if err != nil {
		return VariationKey{}, fmt.Errorf("%w: date %q", ErrMalformedKey, parts[1])
	}
	age, err := strconv.Atoi(parts[2])
	if err != nil {
		return VariationKey{}, fmt.Errorf("%w: age %q", ErrMalformedKey, parts[2])
	}
	k, err := BuildKey(parts[0], date, age, Tone(parts[3]), parts[4])
	if err != nil {
		return VariationKey{}, err
	}
	if k.String() != strings.TrimSpace(raw) {
		return VariationKey{}, fmt.Errorf("%w: not in canonical form", ErrMalformedKey)
	}
	return k, nil
}

// CivilDate truncates t to midnight UTC of its calendar day in t's own location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

func NormalizeLanguage(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
