package flowfield

import (
	"fmt"
	"os"
	"time"
)

// frameStats holds per-frame geometry counts and draw timing.
// Only populated when the viewer's debug mode is on.
type frameStats struct {
	drawTime  time.Duration
	arrows    int
	segments  int
	particles int
	cells     int
}

// debugLog prints geometry and timing stats to stderr.
func (v *Viewer) debugLog(stats frameStats) {
	if !v.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[flowfield] draw: %v | arrows: %d | segments: %d | particles: %d | cells: %d\n",
		stats.drawTime, stats.arrows, stats.segments, stats.particles, stats.cells)
}

// debugCheckDisposed panics with a descriptive message when a disposed mode
// is asked to draw. Only called when the viewer is in debug mode; in release
// mode a disposed mode simply draws nothing.
func debugCheckDisposed(m Mode, op string) {
	if m.State() == StateDisposed {
		panic(fmt.Sprintf("flowfield debug: %s on disposed %s mode", op, m.Type()))
	}
}
