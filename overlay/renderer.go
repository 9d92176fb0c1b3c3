// Package overlay renders the per-frame annotation layer: detected
// objects, drop zones, the fence boundary, the selected target, and a
// status line for the sequencer state.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"rescuecam/region"
	"rescuecam/tracking"
)

// zoneAlpha is the translucency of the zone fill.
const zoneAlpha = 0.3

// Renderer draws annotations in place on BGR frames.
type Renderer struct {
	palette map[string]color.RGBA
}

// NewRenderer creates a renderer from a parsed palette. Missing palette
// entries fall back to white.
func NewRenderer(palette map[string]colorful.Color) *Renderer {
	converted := make(map[string]color.RGBA, len(palette))
	for name, c := range palette {
		r, g, b := c.RGB255()
		converted[name] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return &Renderer{palette: converted}
}

func (r *Renderer) colorFor(name string) color.RGBA {
	if c, ok := r.palette[name]; ok {
		return c
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// DrawObjects outlines every detected object with its class color, a
// center dot, and a class/position label.
func (r *Renderer) DrawObjects(frame *gocv.Mat, objects []tracking.Object) {
	for _, obj := range objects {
		c := r.colorFor(obj.Class.String())
		center := obj.Center()

		gocv.Circle(frame, center, obj.Radius, c, 2)
		gocv.Circle(frame, center, 2, c, -1)

		label := fmt.Sprintf("%s (%d, %d)", obj.Class, obj.X, obj.Y)
		origin := image.Pt(obj.X-50, obj.Y-obj.Radius-10)
		gocv.PutText(frame, label, origin, gocv.FontHersheySimplex, 0.5, c, 2)
	}
}

// DrawZones fills each detected drop zone translucently and outlines its
// bounding box.
func (r *Renderer) DrawZones(frame *gocv.Mat, zones *region.Zones) {
	if zones == nil {
		return
	}
	for _, owner := range tracking.TeamClasses {
		zone := zones.Get(owner)
		if zone == nil {
			continue
		}
		c := r.colorFor(owner.String())

		fill := frame.Clone()
		gocv.Rectangle(&fill, zone.Bounds, c, -1)
		gocv.AddWeighted(fill, zoneAlpha, *frame, 1-zoneAlpha, 0, frame)
		fill.Close()

		gocv.Rectangle(frame, zone.Bounds, c, 2)
		label := fmt.Sprintf("%s zone", owner)
		gocv.PutText(frame, label, image.Pt(zone.Bounds.Min.X+10, zone.Bounds.Min.Y-10),
			gocv.FontHersheySimplex, 0.6, c, 2)
	}
}

// DrawFence shades the excluded area so the operator can see what the
// detector is ignoring.
func (r *Renderer) DrawFence(frame *gocv.Mat, fence *region.FenceMask) {
	if fence == nil || fence.Mat().Empty() {
		return
	}
	c := r.colorFor("purple")

	excluded := gocv.NewMat()
	defer excluded.Close()
	gocv.BitwiseNot(fence.Mat(), &excluded)

	shade := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		frame.Rows(), frame.Cols(), frame.Type())
	defer shade.Close()

	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(shade, zoneAlpha, *frame, 1-zoneAlpha, 0, &blended)
	blended.CopyToWithMask(frame, excluded)
}

// DrawTarget rings the selected target and tags it.
func (r *Renderer) DrawTarget(frame *gocv.Mat, target *tracking.Object) {
	if target == nil {
		return
	}
	c := r.colorFor("target")
	center := target.Center()
	gocv.Circle(frame, center, target.Radius+5, c, 3)
	gocv.PutText(frame, "TARGET", image.Pt(target.X-30, target.Y+target.Radius+20),
		gocv.FontHersheySimplex, 0.6, c, 2)
}

// DrawStatus prints the sequencer state and held count in the top-left
// corner.
func (r *Renderer) DrawStatus(frame *gocv.Mat, state string, heldCount int) {
	c := r.colorFor("status")
	text := fmt.Sprintf("state: %s  held: %d", state, heldCount)
	gocv.PutText(frame, text, image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, c, 2)
}
