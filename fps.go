package flowfield

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// drawFPSOverlay prints FPS/TPS and, when the last formula edit failed, the
// compile error in the screen corner. Debug text only; the real error
// surface is Viewer.Err.
func drawFPSOverlay(screen *ebiten.Image, lastErr error) {
	msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if lastErr != nil {
		msg += "\n" + lastErr.Error()
	}
	ebitenutil.DebugPrint(screen, msg)
}
