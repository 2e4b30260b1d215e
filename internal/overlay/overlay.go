// Package overlay draws the 2D layer on top of rendered frames: the venue QR
// code and the DJ player's teaser bubble.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	bubbleColor = color.RGBA{0x1a, 0x0a, 0x2e, 0xd0}
	accentColor = color.RGBA{0xff, 0x00, 0x6e, 0xff}
	textColor   = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// Overlay is immutable after construction and safe for concurrent Draw calls.
type Overlay struct {
	QR     image.Image
	Picker *Picker
	Margin int
	Scale  int // text pixel scale
}

// NewQR encodes url as a square QR code of size pixels.
func NewQR(url string, size int) (image.Image, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode %q: %w", url, err)
	}
	q.BackgroundColor = color.White
	q.ForegroundColor = color.RGBA{0x0a, 0x05, 0x14, 0xff}
	return q.Image(size), nil
}

// New builds an overlay for a frame of the given height. An empty url means
// no QR code; a nil picker means no teasers.
func New(url string, frameHeight int, picker *Picker) (*Overlay, error) {
	o := &Overlay{Picker: picker, Margin: frameHeight / 40, Scale: 2}
	if frameHeight >= 1080 {
		o.Scale = 3
	}
	if url != "" {
		qr, err := NewQR(url, frameHeight/6)
		if err != nil {
			return nil, err
		}
		o.QR = qr
	}
	return o, nil
}

// Draw composites the overlay for time t onto dst.
func (o *Overlay) Draw(dst *image.RGBA, t float64) {
	b := dst.Bounds()
	if o.QR != nil {
		qb := o.QR.Bounds()
		at := image.Pt(b.Max.X-o.Margin-qb.Dx(), b.Max.Y-o.Margin-qb.Dy())
		draw.Draw(dst, qb.Add(at.Sub(qb.Min)), o.QR, qb.Min, draw.Over)
	}
	if o.Picker != nil {
		if msg, ok := o.Picker.At(t); ok {
			o.drawBubble(dst, msg)
		}
	}
}

func (o *Overlay) drawBubble(dst *image.RGBA, msg string) {
	text := renderText(msg, textColor)
	tb := text.Bounds()
	s := o.Scale
	if s < 1 {
		s = 1
	}
	pad := 4 * s
	w, h := tb.Dx()*s+2*pad, tb.Dy()*s+2*pad

	b := dst.Bounds()
	x0 := b.Min.X + o.Margin
	y0 := b.Max.Y - o.Margin - h
	box := image.Rect(x0, y0, x0+w, y0+h)

	draw.Draw(dst, box, image.NewUniform(bubbleColor), image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(x0, y0, x0+s, y0+h), image.NewUniform(accentColor), image.Point{}, draw.Src)
	inner := image.Rect(x0+pad, y0+pad, x0+pad+tb.Dx()*s, y0+pad+tb.Dy()*s)
	draw.NearestNeighbor.Scale(dst, inner, text, tb, draw.Over, nil)
}

// renderText draws msg with the built-in 7x13 face on a transparent canvas.
func renderText(msg string, col color.Color) *image.RGBA {
	face := basicfont.Face7x13
	m := face.Metrics()
	w := font.MeasureString(face, msg).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{Y: m.Ascent},
	}
	d.DrawString(msg)
	return img
}
