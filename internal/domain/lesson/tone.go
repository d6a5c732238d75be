package lesson

import "strings"

type Tone string

const (
	ToneFun         Tone = "fun"
	ToneGrandmother Tone = "grandmother"
	ToneNeutral     Tone = "neutral"
)

var Tones = []Tone{ToneFun, ToneGrandmother, ToneNeutral}

// ParseTone normalizes raw input. ok is false for anything outside the closed set.
func ParseTone(raw string) (Tone, bool) {
	t := Tone(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case ToneFun, ToneGrandmother, ToneNeutral:
		return t, true
	default:
		return "", false
	}
}

// ToneProfile is the phrase bank a tone draws from.
type ToneProfile struct {
	VoiceCharacter   string   `json:"voice_character"`
	InteractionStyle string   `json:"interaction_style"`
	Openings         []string `json:"openings"`
	Transitions      []string `json:"transitions"`
	Encouragements   []string `json:"encouragements"`
	Closings         []string `json:"closings"`
}

// Phrase returns the i-th entry, clamping to the last one so short banks still work.
func Phrase(bank []string, i int) string {
	if len(bank) == 0 {
		return ""
	}
	if i < 0 {
		i = 0
	}
	if i >= len(bank) {
		i = len(bank) - 1
	}
	return bank[i]
}

var toneProfiles = map[Tone]ToneProfile{
	ToneFun: {
		VoiceCharacter:   "energetic_explorer",
		InteractionStyle: "excitement_and_wonder",
		Openings:         []string{"Hey there!", "Ready for some sound science?", "Let's discover something amazing!"},
		Transitions:      []string{"Here's the cool part...", "But wait, there's more!", "Now for the really fun stuff..."},
		Encouragements:   []string{"You're getting it!", "That's exactly right!", "You're a sound scientist now!"},
		Closings:         []string{"You just learned something awesome!", "Keep exploring the world of sound!", "You're ready to share this knowledge!"},
	},
	ToneGrandmother: {
		VoiceCharacter:   "wise_nurturer",
		InteractionStyle: "warm_guidance",
		Openings:         []string{"Come here, dear one...", "Let me share something wonderful with you...", "You know, there's something beautiful about..."},
		Transitions:      []string{"And here's what's truly special...", "But the most important thing is...", "What I want you to remember..."},
		Encouragements:   []string{"You understand this so well...", "That's exactly right, my dear...", "You have such wisdom..."},
		Closings:         []string{"Remember this always...", "You carry this knowledge with you...", "Share this understanding with others..."},
	},
	ToneNeutral: {
		VoiceCharacter:   "knowledgeable_guide",
		InteractionStyle: "professional_clarity",
		Openings:         []string{"Today we'll explore...", "Let's examine...", "We'll investigate..."},
		Transitions:      []string{"Furthermore...", "Additionally...", "Moreover..."},
		Encouragements:   []string{"That's correct.", "You're on the right track.", "Good observation."},
		Closings:         []string{"You now understand...", "This knowledge enables...", "You can apply this to..."},
	},
}

// ProfileFor returns the profile for t. Unknown tones get the neutral profile.
func ProfileFor(t Tone) ToneProfile {
	switch t {
	case ToneFun, ToneGrandmother, ToneNeutral:
		return toneProfiles[t]
	default:
		return toneProfiles[ToneNeutral]
	}
}
