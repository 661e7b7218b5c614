// File: render.go
package card

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	CoverColor  = "#FFD700"
	CoverInk    = "#333333"
	StripeColor = "#F2C200"
	CoverText   = "SCRATCH HERE"
)

// RenderConfig holds the canvas size and the derived text metrics.
type RenderConfig struct {
	Width, Height int
	FontSize      float64 // prize label
	CaptionSize   float64
	StripeCount   int // foil stripes on the cover
}

// NewRenderConfig sizes the text to the card: the label fits roughly twelve glyphs
// across and at most a sixth of the height.
func NewRenderConfig(width, height int) (*RenderConfig, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("card: invalid size %dx%d", width, height)
	}
	fontSize := math.Min(float64(width)/12, float64(height)/6)
	if fontSize < 4 {
		fontSize = 4
	}
	return &RenderConfig{
		Width:       width,
		Height:      height,
		FontSize:    fontSize,
		CaptionSize: fontSize * 0.6,
		StripeCount: width/25 + 2,
	}, nil
}

var (
	fontOnce    sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontErr     error
)

func loadFonts() error {
	fontOnce.Do(func() {
		regularFont, fontErr = truetype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		boldFont, fontErr = truetype.Parse(gobold.TTF)
	})
	return fontErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

// RenderPrize paints the hidden layer: background, label and caption.
func RenderPrize(cfg *RenderConfig, p Prize) (image.Image, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("card: load fonts: %w", err)
	}
	dc := gg.NewContext(cfg.Width, cfg.Height)
	dc.SetHexColor(p.Background)
	dc.Clear()

	w, h := float64(cfg.Width), float64(cfg.Height)
	dc.SetHexColor(p.Foreground)
	dc.SetLineWidth(math.Max(1, cfg.FontSize/10))
	inset := cfg.FontSize / 3
	dc.DrawRectangle(inset, inset, w-2*inset, h-2*inset)
	dc.Stroke()

	dc.SetFontFace(face(boldFont, cfg.FontSize))
	dc.DrawStringWrapped(p.Label, w/2, h*0.42, 0.5, 0.5, w-4*inset, 1.2, gg.AlignCenter)
	if p.Caption != "" {
		dc.SetFontFace(face(regularFont, cfg.CaptionSize))
		dc.DrawStringWrapped(p.Caption, w/2, h*0.72, 0.5, 0.5, w-4*inset, 1.2, gg.AlignCenter)
	}
	return dc.Image(), nil
}

// RenderCover paints the opaque layer that the player scratches away.
func RenderCover(cfg *RenderConfig) (image.Image, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("card: load fonts: %w", err)
	}
	dc := gg.NewContext(cfg.Width, cfg.Height)
	dc.SetHexColor(CoverColor)
	dc.Clear()
	drawStripes(dc, cfg)

	dc.SetHexColor(CoverInk)
	dc.SetFontFace(face(boldFont, cfg.FontSize*0.9))
	dc.DrawStringAnchored(CoverText, float64(cfg.Width)/2, float64(cfg.Height)/2, 0.5, 0.5)
	return dc.Image(), nil
}

// drawStripes lays diagonal foil bands across the cover.
func drawStripes(dc *gg.Context, cfg *RenderConfig) {
	if cfg.StripeCount <= 0 {
		return
	}
	w, h := float64(cfg.Width), float64(cfg.Height)
	step := (w + h) / float64(cfg.StripeCount)
	dc.SetHexColor(StripeColor)
	dc.SetLineWidth(step / 3)
	for i := 0; i < cfg.StripeCount; i++ {
		x := float64(i) * step
		dc.DrawLine(x, 0, x-h, h)
	}
	dc.Stroke()
}

// Composite shows the prize wherever the mask is transparent and the cover elsewhere.
func Composite(prize, cover image.Image, mask *image.Alpha) (*image.RGBA, error) {
	b := mask.Bounds()
	if !prize.Bounds().Eq(b) || !cover.Bounds().Eq(b) {
		return nil, fmt.Errorf("card: layer bounds %v/%v do not match mask %v", prize.Bounds(), cover.Bounds(), b)
	}
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, prize, b.Min, draw.Src)
	draw.DrawMask(dst, b, cover, b.Min, mask, b.Min, draw.Over)
	return dst, nil
}

// Scale resamples img to w×h.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI encodes img as a base64 PNG data URI.
func DataURI(img image.Image) (string, error) {
	b, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// Layers is the pair of static images painted for one card.
type Layers struct {
	Prize image.Image
	Cover image.Image
}

// NewLayers paints both layers for prize p.
func NewLayers(cfg *RenderConfig, p Prize) (*Layers, error) {
	prize, err := RenderPrize(cfg, p)
	if err != nil {
		return nil, err
	}
	cover, err := RenderCover(cfg)
	if err != nil {
		return nil, err
	}
	return &Layers{Prize: prize, Cover: cover}, nil
}

// Composite applies mask to the layers.
func (l *Layers) Composite(mask *image.Alpha) (*image.RGBA, error) {
	return Composite(l.Prize, l.Cover, mask)
}
