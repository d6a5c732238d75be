package services

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

func TestCardRendererDrawsSegment(t *testing.T) {
	r, err := NewCardRenderer(logger.Nop(), "")
	if err != nil {
		t.Fatalf("NewCardRenderer: %v", err)
	}
	v := renderVariation(8)
	v.Metadata.Tone = domain.ToneFun
	v.Scripts[0].OnScreenText = "THE SCIENCE OF SOUND"

	buf, err := r.Render(v, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != cardWidth || b.Dy() != cardHeight {
		t.Fatalf("card size: %v", b)
	}

	if _, err := r.Render(v, 4); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing segment: got %v", err)
	}
}
