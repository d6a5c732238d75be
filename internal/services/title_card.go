package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

const (
	cardWidth    = 1280
	cardHeight   = 720
	cardMargin   = 96
	cardFontSize = 44
)

// Background colours per tone.
var cardPalette = map[domain.Tone]color.NRGBA{
	domain.ToneFun:         {R: 0xFF, G: 0x8A, B: 0x3D, A: 0xFF},
	domain.ToneGrandmother: {R: 0x7A, G: 0x5C, B: 0x8E, A: 0xFF},
	domain.ToneNeutral:     {R: 0x2F, G: 0x4D, B: 0x6B, A: 0xFF},
}

// CardRenderer draws a segment's on-screen text as a PNG title card.
type CardRenderer struct {
	log  *logger.Logger
	face font.Face
}

// NewCardRenderer loads fontPath, or the bundled Go Regular face when empty.
func NewCardRenderer(baseLog *logger.Logger, fontPath string) (*CardRenderer, error) {
	log := baseLog.With("service", "CardRenderer")
	var (
		raw []byte
		err error
	)
	if strings.TrimSpace(fontPath) == "" {
		raw = goregular.TTF
	} else {
		log.Info("Loading card font", "font", fontPath)
		if raw, err = os.ReadFile(fontPath); err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    cardFontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return &CardRenderer{log: log, face: face}, nil
}

func (r *CardRenderer) Render(v *domain.LessonVariation, scriptNumber int) (bytes.Buffer, error) {
	var buf bytes.Buffer
	seg, ok := v.Segment(scriptNumber)
	if !ok {
		return buf, &domain.NotFoundError{Resource: "script", ID: fmt.Sprintf("%s#%d", v.Key, scriptNumber)}
	}

	bg, ok := cardPalette[v.Metadata.Tone]
	if !ok {
		bg = cardPalette[domain.ToneNeutral]
	}

	dc := gg.NewContext(cardWidth, cardHeight)
	dc.SetColor(bg)
	dc.DrawRectangle(0, 0, cardWidth, cardHeight)
	dc.Fill()

	dc.SetFontFace(r.face)
	dc.SetColor(color.White)
	dc.DrawStringWrapped(seg.OnScreenText, cardWidth/2, cardHeight/2, 0.5, 0.5, cardWidth-2*cardMargin, 1.4, gg.AlignCenter)

	dc.SetColor(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xB0})
	footer := fmt.Sprintf("%s  %d/%d", v.Metadata.Title, seg.ScriptNumber, len(v.Scripts))
	dc.DrawStringAnchored(footer, cardWidth/2, cardHeight-cardMargin/2, 0.5, 0.5)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}
