package flowfield

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// camera holds the view zoom and any in-flight zoom animation. Orientation
// (yaw and pitch) lives on the Viewer; the camera only scales the
// projection's pixels-per-unit.
type camera struct {
	zoom  float64
	tween *gween.Tween
}

func newCamera() camera {
	return camera{zoom: 1}
}

// set snaps the zoom, cancelling any running animation. Non-positive values
// are ignored.
func (c *camera) set(zoom float64) {
	if zoom <= 0 {
		return
	}
	c.zoom = zoom
	c.tween = nil
}

// animateTo eases the zoom toward the target over duration seconds.
func (c *camera) animateTo(zoom float64, duration float32) {
	if zoom <= 0 {
		return
	}
	if duration <= 0 {
		c.set(zoom)
		return
	}
	c.tween = gween.New(float32(c.zoom), float32(zoom), duration, ease.InOutQuad)
}

// update advances the zoom animation by dt seconds.
func (c *camera) update(dt float64) {
	if c.tween == nil {
		return
	}
	v, done := c.tween.Update(float32(dt))
	c.zoom = float64(v)
	if done {
		c.tween = nil
	}
}
