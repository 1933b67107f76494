// pkg/render/engo/hud.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-ringrace/pkg/engine"
)

// HUD geometry in pixels
const (
	hudMargin     = 10
	hudBarHeight  = 8
	hudPipSize    = 10
	hudPipSpacing = 4
	// the deadline bar is full at this many bonuses banked
	hudDeadlineSpan = 3
)

var (
	colorDeadline = color.RGBA{40, 220, 80, 220}
	colorLowTime  = color.RGBA{255, 60, 40, 220}
	colorPenalty  = color.RGBA{230, 200, 40, 220}
	colorPip      = color.RGBA{90, 90, 90, 220}
	colorPipDone  = color.RGBA{60, 90, 220, 220}
)

// hudBar is one flat rectangle of the heads-up display
type hudBar struct {
	X, Y, W, H float32
	Color      color.Color
}

// hudLayout lays out the deadline bar, the penalty bar and one pip per
// checkpoint along the top of the screen
func hudLayout(deadlineMs, penaltyMs, bonusMs int64, passed, checkpoints int, width float32) []hudBar {
	usable := max(width-2*hudMargin, 0)
	span := float32(bonusMs * hudDeadlineSpan)

	deadline := hudBar{X: hudMargin, Y: hudMargin, H: hudBarHeight, Color: colorDeadline}
	if span > 0 {
		deadline.W = usable * min(float32(max(deadlineMs, 0))/span, 1)
	}
	if deadlineMs < bonusMs/4 {
		deadline.Color = colorLowTime
	}

	penalty := hudBar{X: hudMargin, Y: hudMargin + hudBarHeight + 2, H: hudBarHeight / 2, Color: colorPenalty}
	if span > 0 {
		penalty.W = usable * min(float32(max(penaltyMs, 0))/span, 1)
	}

	bars := []hudBar{deadline, penalty}
	y := penalty.Y + penalty.H + hudPipSpacing
	for i := 0; i < checkpoints; i++ {
		c := colorPip
		if i < passed {
			c = colorPipDone
		}
		bars = append(bars, hudBar{
			X:     hudMargin + float32(i)*(hudPipSize+hudPipSpacing),
			Y:     y,
			W:     hudPipSize,
			H:     hudPipSize,
			Color: c,
		})
	}
	return bars
}

// hud owns the sprites the layout is drawn with
type hud struct {
	sink    spriteSink
	bonusMs int64
	bars    []*sprite
}

func newHUD(sink spriteSink, bonusMs int64) *hud {
	return &hud{sink: sink, bonusMs: bonusMs}
}

func (h *hud) update(snap engine.Snapshot, width float32) {
	layout := hudLayout(snap.DeadlineMs, snap.PenaltyMs, h.bonusMs, snap.Passed, len(snap.Checkpoints), width)

	for len(h.bars) < len(layout) {
		s := &sprite{BasicEntity: ecs.NewBasic()}
		s.Drawable = common.Rectangle{}
		h.sink.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
		h.bars = append(h.bars, s)
	}

	for i, s := range h.bars {
		if i >= len(layout) {
			s.Hidden = true
			continue
		}
		b := layout[i]
		s.Hidden = b.W <= 0
		s.Color = b.Color
		s.Position = engo.Point{X: b.X, Y: b.Y}
		s.Width = b.W
		s.Height = b.H
	}
}

func (h *hud) close() {
	for _, s := range h.bars {
		h.sink.Remove(s.BasicEntity)
	}
	h.bars = nil
}
