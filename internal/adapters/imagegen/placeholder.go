// Package imagegen renders placeholder frame images attached to job progress
// events, standing in for live browser screenshots.
package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	frameWidth  = 900
	frameHeight = 560
)

var (
	background = color.RGBA{R: 18, G: 18, B: 18, A: 255}
	titleColor = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	textColor  = color.RGBA{R: 240, G: 240, B: 240, A: 255}
)

// PlaceholderRenderer draws a fixed-size PNG frame with the service title and
// a progress label.
type PlaceholderRenderer struct {
	Title string
}

func NewPlaceholderRenderer() *PlaceholderRenderer {
	return &PlaceholderRenderer{Title: "Professor Lock Browser"}
}

func (r *PlaceholderRenderer) Render(label string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	drawText(img, 30, 40, r.Title, titleColor)
	drawText(img, 30, 90, label, textColor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func drawText(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
