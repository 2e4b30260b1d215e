package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawLabel renders text centered at (cx, cy) and scaled to span width pixels.
// The glyphs come from the built-in 7x13 face and are upscaled with bilinear
// filtering.
func DrawLabel(dst draw.Image, text string, cx, cy, width float64, col color.Color) {
	if text == "" || width < 4 {
		return
	}
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	if adv <= 0 || h <= 0 {
		return
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, adv, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)

	scale := width / float64(adv)
	w := int(width + 0.5)
	hh := int(float64(h)*scale + 0.5)
	if hh < 1 {
		hh = 1
	}
	x0 := int(cx - float64(w)/2)
	y0 := int(cy - float64(hh)/2)
	draw.BiLinear.Scale(dst, image.Rect(x0, y0, x0+w, y0+hh), glyphs, glyphs.Bounds(), draw.Over, nil)
}
