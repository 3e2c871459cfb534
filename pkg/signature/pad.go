// Package signature captures freehand strokes on a raster surface and
// serializes the result to an embeddable PNG data URL. The pad owns all
// transient drawing state; nothing leaks into the form record until Save.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
)

// ErrNotSized is returned when strokes or saves hit a pad whose surface has
// not been sized yet. A surface at zero or stale dimensions is a defect, so
// the pad refuses to operate until Resize is called with the displayed size.
var ErrNotSized = errors.New("signature: pad surface is not sized")

// Point is a position on the pad in surface coordinates.
type Point struct {
	X float64
	Y float64
}

type padState int

const (
	stateIdle padState = iota
	stateDrawing
)

const strokeRadius = 1 // stroke width 2, round cap

// Pad is a single-session drawing surface. One active stroke at a time: a
// Begin while drawing or an Extend while idle is ignored, which also drops
// concurrent pointer events from a second input source.
type Pad struct {
	surface *image.RGBA
	state   padState
	last    Point
	touched bool
}

// NewPad creates an unsized pad. Call Resize before drawing.
func NewPad() *Pad {
	return &Pad{}
}

// Resize (re)allocates the surface to the displayed size, discarding any
// strokes. Call it every time the capture surface becomes visible so the
// raster matches its on-screen dimensions.
func (p *Pad) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("signature: invalid surface size %dx%d", width, height)
	}
	p.surface = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(p.surface, p.surface.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	p.state = stateIdle
	p.touched = false
	return nil
}

// Sized reports whether the pad has a usable surface.
func (p *Pad) Sized() bool {
	return p.surface != nil
}

// Drawing reports whether a stroke is in progress.
func (p *Pad) Drawing() bool {
	return p.state == stateDrawing
}

// Begin starts a stroke at the given point. Ignored while another stroke is
// active.
func (p *Pad) Begin(pt Point) error {
	if p.surface == nil {
		return ErrNotSized
	}
	if p.state == stateDrawing {
		return nil
	}
	p.state = stateDrawing
	p.last = pt
	return nil
}

// Extend draws a connected line segment from the last point to pt and
// advances the last point, producing smooth strokes rather than isolated
// dots. Ignored while idle.
func (p *Pad) Extend(pt Point) error {
	if p.surface == nil {
		return ErrNotSized
	}
	if p.state != stateDrawing {
		return nil
	}
	p.drawSegment(p.last, pt)
	p.last = pt
	p.touched = true
	return nil
}

// End finishes the active stroke.
func (p *Pad) End() {
	p.state = stateIdle
}

// Clear wipes the surface and ends any active stroke. The saved value of a
// cleared pad is absent.
func (p *Pad) Clear() {
	if p.surface == nil {
		return
	}
	draw.Draw(p.surface, p.surface.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	p.state = stateIdle
	p.touched = false
}

// Save serializes the drawing to a PNG data URL and ends the capture
// session. An untouched or cleared pad saves to the empty string, meaning
// the field value is absent.
func (p *Pad) Save() (string, error) {
	if p.surface == nil {
		return "", ErrNotSized
	}
	p.state = stateIdle
	if !p.touched {
		return "", nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, p.surface); err != nil {
		return "", fmt.Errorf("signature: encode surface: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// drawSegment rasterizes a line between two points with a round cap.
func (p *Pad) drawSegment(from, to Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		p.stamp(from)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.stamp(Point{X: from.X + dx*t, Y: from.Y + dy*t})
	}
}

// stamp paints a small disc at pt, clipped to the surface.
func (p *Pad) stamp(pt Point) {
	cx := int(math.Round(pt.X))
	cy := int(math.Round(pt.Y))
	bounds := p.surface.Bounds()
	for y := cy - strokeRadius; y <= cy+strokeRadius; y++ {
		for x := cx - strokeRadius; x <= cx+strokeRadius; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			p.surface.SetRGBA(x, y, color.RGBA{A: 0xff})
		}
	}
}
