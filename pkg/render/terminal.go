package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

// Glyphs used on the radar view
const (
	glyphCraft      = '^'
	glyphActive     = 'O'
	glyphCheckpoint = 'o'
	glyphPassed     = '.'
	glyphObstacle   = '#'
	glyphGoal       = 'G'

	// outline variants for wireframe mode
	glyphObstacleWire = '+'
	glyphGoalWire     = 'g'
)

var (
	styleDefault  = tcell.StyleDefault
	styleCraft    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleBlink    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleActive   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleRing     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleGoal     = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	styleHUD      = tcell.StyleDefault.Reverse(true)
)

// TerminalRenderer draws a heading-up radar of the course around the craft
type TerminalRenderer struct {
	screen tcell.Screen
	// scale is world units per terminal row
	scale float64
}

// NewTerminalRenderer creates a terminal renderer on an initialised screen
func NewTerminalRenderer(screen tcell.Screen, scale float64) *TerminalRenderer {
	if scale <= 0 {
		scale = 1
	}
	return &TerminalRenderer{
		screen: screen,
		scale:  scale,
	}
}

// worldToScreen converts a world point to a cell, rotating so the camera
// heading points up. Cells are about twice as tall as wide.
func (r *TerminalRenderer) worldToScreen(center mgl64.Vec3, heading float64, p mgl64.Vec3) (int, int) {
	width, height := r.screen.Size()
	local := physics.ToLocal(p.Sub(center), heading)
	screenX := int(math.Round(local.X()/r.scale*2)) + width/2
	screenY := int(math.Round(local.Z()/r.scale)) + height/2
	return screenX, screenY
}

// Render implements Renderer
func (r *TerminalRenderer) Render(snap engine.Snapshot) error {
	r.screen.Clear()

	rig := RigFor(snap.Pose, snap.View.Camera)
	heading := rig.Heading()
	center := snap.Pose.Position

	obstacleGlyph, goalGlyph := glyphObstacle, glyphGoal
	if snap.View.Wireframe {
		obstacleGlyph, goalGlyph = glyphObstacleWire, glyphGoalWire
	}

	for _, ob := range snap.Obstacles {
		r.plot(center, heading, ob.Position, obstacleGlyph, styleObstacle)
	}
	for _, cp := range snap.Checkpoints {
		if !cp.Visible {
			continue
		}
		switch {
		case cp.Active:
			r.plot(center, heading, cp.Position, glyphActive, styleActive)
		case cp.Triggered:
			r.plot(center, heading, cp.Position, glyphPassed, styleRing)
		default:
			r.plot(center, heading, cp.Position, glyphCheckpoint, styleRing)
		}
	}
	if snap.Goal.Visible {
		r.plot(center, heading, snap.Goal.Position, goalGlyph, styleGoal)
	}

	craftStyle := styleCraft
	if snap.Blink {
		craftStyle = styleBlink
	}
	r.plot(center, heading, center, glyphCraft, craftStyle)

	r.drawHUD(snap)
	r.drawBanner(snap)
	r.drawToggles(snap.View)

	r.screen.Show()
	return nil
}

func (r *TerminalRenderer) plot(center mgl64.Vec3, heading float64, p mgl64.Vec3, glyph rune, style tcell.Style) {
	width, height := r.screen.Size()
	x, y := r.worldToScreen(center, heading, p)

	// row 0 is the HUD
	if x >= 0 && x < width && y >= 1 && y < height {
		r.screen.SetContent(x, y, glyph, nil, style)
	}
}

func (r *TerminalRenderer) drawHUD(snap engine.Snapshot) {
	width, _ := r.screen.Size()
	line := fmt.Sprintf(" %-4s time %6.1fs  rings %d/%d  speed %5.2f  cam %s",
		snap.State,
		float64(max(snap.DeadlineMs, 0))/1000,
		snap.Passed, len(snap.Checkpoints),
		snap.Speed,
		snap.View.Camera,
	)
	if snap.PenaltyMs > 0 {
		line += fmt.Sprintf("  penalty %4.1fs", float64(snap.PenaltyMs)/1000)
	}
	for x := 0; x < width; x++ {
		r.screen.SetContent(x, 0, ' ', nil, styleHUD)
	}
	r.drawText(0, 0, line, styleHUD)
}

func (r *TerminalRenderer) drawBanner(snap engine.Snapshot) {
	var text string
	switch snap.State {
	case "menu":
		text = "PAUSED  enter to resume"
	case "end":
		switch snap.Outcome {
		case "finished":
			text = fmt.Sprintf("FINISHED  %.1fs to spare", float64(snap.DeadlineMs)/1000)
		case "time_up":
			text = "TIME UP"
		default:
			text = "RACE ABANDONED"
		}
	default:
		if !snap.Started {
			text = "press a driving key to start"
		}
	}
	if text == "" {
		return
	}
	width, height := r.screen.Size()
	r.drawText((width-len(text))/2, height-1, text, styleDefault.Bold(true))
}

// drawToggles shows the F2-F5 settings in the bottom right corner, one
// letter each when on
func (r *TerminalRenderer) drawToggles(view engine.Presentation) {
	flags := []byte("....")
	for i, on := range []bool{view.Wireframe, view.EnvMap, view.Headlight, view.Shadow} {
		if on {
			flags[i] = "WEHS"[i]
		}
	}
	width, height := r.screen.Size()
	r.drawText(width-len(flags)-1, height-1, string(flags), styleDefault)
}

func (r *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) {
	width, _ := r.screen.Size()
	for _, ch := range text {
		if x >= width {
			return
		}
		if x >= 0 {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
}

// Close releases the terminal
func (r *TerminalRenderer) Close() error {
	r.screen.Fini()
	return nil
}

var _ Renderer = (*TerminalRenderer)(nil)
