package lesson

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestVariationRowRoundTrip(t *testing.T) {
	video := "https://cdn.example.com/v.mp4"
	v := &LessonVariation{
		Key:      "acoustics_july11_192:2024-07-11:8:fun:english",
		LessonID: "acoustics_july11_192",
		Metadata: LessonMetadata{
			Title:       "The Science of Sound",
			Duration:    25,
			AgeTarget:   8,
			Tone:        ToneFun,
			Language:    "english",
			GeneratedAt: time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC),
		},
		Scripts:  []ScriptSegment{{ScriptNumber: 1, ScriptType: ScriptOpening, VoiceText: "Hey there!"}},
		VideoURL: &video,
	}
	row, err := NewVariationRow(v)
	if err != nil {
		t.Fatalf("NewVariationRow: %v", err)
	}
	if row.LessonDate != "2024-07-11" || row.Age != 8 || row.Tone != "fun" {
		t.Fatalf("row columns not derived from key: %+v", row)
	}
	got, err := row.Variation()
	if err != nil {
		t.Fatalf("Variation: %v", err)
	}
	if diff := cmp.Diff(v, got); diff != "" {
		t.Fatalf("round trip diff (-want +got):\n%s", diff)
	}
}

func TestNewVariationRowRejectsBadKey(t *testing.T) {
	if _, err := NewVariationRow(&LessonVariation{Key: "nope"}); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}
