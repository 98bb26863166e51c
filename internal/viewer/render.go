package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
)

const labelTabHeight = 12

// RenderPNG draws the page boxes of view onto a white canvas and encodes it
// as PNG. The highlighted box is filled and drawn with a heavier outline.
func RenderPNG(w io.Writer, view *ElementView) error {
	if view == nil {
		return fmt.Errorf("render: nil view")
	}
	canvas := image.NewRGBA(image.Rect(0, 0, view.CanvasWidth, view.CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	var highlighted *Box
	for i := range view.Boxes {
		b := &view.Boxes[i]
		if b.Highlighted {
			highlighted = b
			continue
		}
		drawBox(canvas, b)
	}
	// drawn last so it is never covered
	if highlighted != nil {
		drawBox(canvas, highlighted)
	}

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("render: encoding png: %w", err)
	}
	return nil
}

func drawBox(dst *image.RGBA, b *Box) {
	c := parseHex(b.Color)
	rect := image.Rect(
		int(math.Round(b.X)), int(math.Round(b.Y)),
		int(math.Round(b.X+b.Width)), int(math.Round(b.Y+b.Height)),
	).Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}

	width := b.LineWidth
	if b.Highlighted {
		width += 2
		fill := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0x40}
		draw.Draw(dst, rect, image.NewUniform(fill), image.Point{}, draw.Over)
	}
	outline(dst, rect, width, c)

	tabColor := c
	if b.OCREnhanced {
		tabColor = parseHex(OCRColor)
	}
	tab := image.Rect(rect.Min.X, rect.Min.Y-labelTabHeight, rect.Min.X+min(rect.Dx(), 80), rect.Min.Y).Intersect(dst.Bounds())
	if !tab.Empty() {
		draw.Draw(dst, tab, image.NewUniform(tabColor), image.Point{}, draw.Src)
	}
}

func outline(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	width = min(width, r.Dx()/2+1, r.Dy()/2+1)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}
