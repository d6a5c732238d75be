package heygen

import (
	"os"
	"strings"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

type avatarBand string

const (
	bandYoung avatarBand = "early_childhood"
	bandYouth avatarBand = "youth"
	bandAdult avatarBand = "adult"
)

var avatars = map[avatarBand]map[domain.Tone]string{
	bandYoung: {
		domain.ToneFun:         "31806751c28d420aa3ac4263ce2fbc5f",
		domain.ToneGrandmother: "668261a318774f519b03a04c75cc10b1",
		domain.ToneNeutral:     "31806751c28d420aa3ac4263ce2fbc5f",
	},
	bandYouth: {
		domain.ToneFun:         "de8ca36e5ef54eeeb00a464ff5d90248",
		domain.ToneGrandmother: "668261a318774f519b03a04c75cc10b1",
		domain.ToneNeutral:     "3b21add7fc3a4bfc81c59281340c4c16",
	},
	bandAdult: {
		domain.ToneFun:         "a564127254b04cc8a52b6448940a8638",
		domain.ToneGrandmother: "d9df6b91a63b42cf8eb20268065953b6",
		domain.ToneNeutral:     "5e97ca0676114012bcabab196a6203bf",
	},
}

// Only english voices are known. Other languages can be supplied with
// HEYGEN_VOICE_<LANGUAGE>_<TONE>.
var voices = map[string]map[domain.Tone]string{
	"english": {
		domain.ToneFun:         "2EiwWnXFnvU5JabPnv8n",
		domain.ToneGrandmother: "bd9428b49722494bb4def9b1a8292c9a",
		domain.ToneNeutral:     "21m00Tcm4TlvDq8ikWAM",
	},
}

// AvatarFor picks the presenter by age band (12 / 25 cutoffs) and tone.
func AvatarFor(age int, tone domain.Tone) string {
	band := bandAdult
	switch {
	case age <= 12:
		band = bandYoung
	case age <= 25:
		band = bandYouth
	}
	if id, ok := avatars[band][tone]; ok {
		return id
	}
	return avatars[bandAdult][domain.ToneNeutral]
}

func VoiceFor(language string, tone domain.Tone) string {
	lang := domain.NormalizeLanguage(language)
	env := "HEYGEN_VOICE_" + strings.ToUpper(strings.NewReplacer("-", "_").Replace(lang)) + "_" + strings.ToUpper(string(tone))
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if id, ok := voices[lang][tone]; ok {
		return id
	}
	return voices["english"][domain.ToneNeutral]
}
