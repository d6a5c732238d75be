package lesson

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuildKeyIsStableAndRoundTrips(t *testing.T) {
	date := time.Date(2024, 7, 11, 15, 4, 5, 0, time.UTC)
	a, err := BuildKey("acoustics_july11_192", date, 8, ToneFun, "English")
	if err != nil {
		t.Fatalf("BuildKey: %v", err)
	}
	b, err := BuildKey(" acoustics_july11_192 ", date.Add(2*time.Hour), 8, Tone("FUN"), "english ")
	if err != nil {
		t.Fatalf("BuildKey: %v", err)
	}
	const want = "acoustics_july11_192:2024-07-11:8:fun:english"
	if a.String() != want || b.String() != want {
		t.Fatalf("unstable key: a=%q b=%q", a.String(), b.String())
	}

	parsed, err := ParseKey(want)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if parsed != a {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", parsed, a)
	}
}

func TestKeysAreDistinctPerAxis(t *testing.T) {
	date := time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC)
	base, _ := BuildKey("l", date, 8, ToneFun, "english")
	variants := []VariationKey{}
	for _, k := range []struct {
		id   string
		d    time.Time
		age  int
		tone Tone
		lang string
	}{
		{"m", date, 8, ToneFun, "english"},
		{"l", date.AddDate(0, 0, 1), 8, ToneFun, "english"},
		{"l", date, 9, ToneFun, "english"},
		{"l", date, 8, ToneNeutral, "english"},
		{"l", date, 8, ToneFun, "spanish"},
	} {
		v, err := BuildKey(k.id, k.d, k.age, k.tone, k.lang)
		if err != nil {
			t.Fatalf("BuildKey: %v", err)
		}
		variants = append(variants, v)
	}
	seen := map[string]bool{base.String(): true}
	for _, v := range variants {
		if seen[v.String()] {
			t.Fatalf("duplicate key %q", v.String())
		}
		seen[v.String()] = true
	}
}

func TestKeyRejectsSeparatorAndMalformedInput(t *testing.T) {
	date := time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC)
	if _, err := BuildKey("bad:id", date, 8, ToneFun, "english"); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("separator in lesson id: got=%v", err)
	}
	if _, err := BuildKey("ok", date, 8, ToneFun, "en:us"); !errors.Is(err, ErrMalformedKey) {
		t.Fatalf("separator in language: got=%v", err)
	}
	for _, raw := range []string{
		"",
		"a:b:c",
		"l:2024-13-01:8:fun:english",
		"l:2024-07-11:eight:fun:english",
		"l:2024-07-11:08:fun:english",
		"l:2024-07-11:8:FUN:english",
		"l:2024-07-11:8:fun:english:extra",
	} {
		if _, err := ParseKey(raw); !errors.Is(err, ErrMalformedKey) {
			t.Fatalf("ParseKey(%q): got=%v", raw, err)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	var ve *ValidationError
	err := errors.Join(errors.New("ctx"), ErrInvalidTone)
	if !errors.As(err, &ve) || ve.Code != "invalid_tone" {
		t.Fatalf("ValidationError not recoverable: %v", err)
	}
	if !errors.Is(LessonNotFound("x"), ErrNotFound) {
		t.Fatalf("LessonNotFound should match ErrNotFound")
	}
	if !errors.Is(MissingAgeExpression("x", Youth), ErrMissingAgeExpression) {
		t.Fatalf("MissingAgeExpression should match sentinel")
	}
	var se *SynthesisError
	if !errors.As(MissingAgeExpression("x", Youth), &se) || se.LessonID != "x" {
		t.Fatalf("MissingAgeExpression should be a SynthesisError")
	}
	wrapped := Storage("get", errors.New("dial tcp: refused"))
	if !errors.Is(wrapped, ErrStorageUnavailable) {
		t.Fatalf("StorageError should match ErrStorageUnavailable")
	}
	if Storage("put", wrapped) != wrapped {
		t.Fatalf("Storage should not double wrap")
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("Storage(nil) should be nil")
	}
}

func TestBuildKeyReportsFirstBadFieldInKeyOrder(t *testing.T) {
	date := time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		_, err := BuildKey(" ", date, 8, Tone("a:b"), "x:y")
		if err == nil || err.Error() != ErrMalformedKey.Error()+": lessonId is empty" {
			t.Fatalf("run %d: got=%v", i, err)
		}
		_, err = BuildKey("ok", date, 8, Tone("a:b"), "x:y")
		if err == nil || !strings.Contains(err.Error(), "tone contains") {
			t.Fatalf("run %d: got=%v", i, err)
		}
	}
}
