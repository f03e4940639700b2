package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	pngWidth   = 720
	pngMargin  = 24
	lineHeight = 16
)

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ink        = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	accent     = color.RGBA{R: 0, G: 110, B: 120, A: 255}
)

// PNGRenderer draws the view onto one tall image and upscales it by Scale.
type PNGRenderer struct {
	Scale int
}

func NewPNGRenderer(scale int) *PNGRenderer {
	if scale < 1 {
		scale = 1
	}
	return &PNGRenderer{Scale: scale}
}

type styledLine struct {
	text  string
	color color.Color
	gap   int // extra pixels before the line
}

func (r *PNGRenderer) Render(v *View) ([]byte, error) {
	face := basicfont.Face7x13
	maxChars := (pngWidth - 2*pngMargin) / face.Advance

	var lines []styledLine
	add := func(text string, c color.Color, gap int) {
		for i, w := range wrap(text, maxChars) {
			g := 0
			if i == 0 {
				g = gap
			}
			lines = append(lines, styledLine{text: w, color: c, gap: g})
		}
	}
	add(strings.ToUpper(v.Title), accent, 0)
	for _, s := range v.Subtitle {
		add(s, ink, 0)
	}
	for _, s := range v.Sections {
		add(s.Heading, accent, lineHeight)
		for _, l := range s.Lines {
			add(l, ink, 0)
		}
	}
	if v.Footer != "" {
		add(v.Footer, accent, lineHeight)
	}

	height := 2 * pngMargin
	for _, l := range lines {
		height += lineHeight + l.gap
	}
	img := image.NewRGBA(image.Rect(0, 0, pngWidth, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Face: face}
	y := pngMargin
	for _, l := range lines {
		y += lineHeight + l.gap
		d.Src = image.NewUniform(l.color)
		d.Dot = fixed.P(pngMargin, y-4)
		d.DrawString(l.text)
	}

	var out image.Image = img
	if r.Scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, pngWidth*r.Scale, height*r.Scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrap breaks text on spaces so no line exceeds width runes. Longer words are split.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var out []string
	var cur []rune
	for _, w := range words {
		rw := []rune(w)
		for len(rw) > width {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			out = append(out, string(rw[:width]))
			rw = rw[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append([]rune(nil), rw...)
		case len(cur)+1+len(rw) <= width:
			cur = append(append(cur, ' '), rw...)
		default:
			out = append(out, string(cur))
			cur = append([]rune(nil), rw...)
		}
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}
