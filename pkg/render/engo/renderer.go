// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/render"
)

// spriteSink receives sprites. common.RenderSystem satisfies it.
type spriteSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

var (
	colorCraft    = color.RGBA{240, 240, 240, 255}
	colorBlink    = color.RGBA{255, 40, 40, 255}
	colorActive   = color.RGBA{40, 220, 80, 255}
	colorRing     = color.RGBA{60, 90, 220, 255}
	colorPassed   = color.RGBA{60, 90, 220, 90}
	colorObstacle = color.RGBA{230, 200, 40, 255}
	colorGoal     = color.RGBA{180, 60, 220, 255}
	colorClear    = color.RGBA{0, 0, 0, 0}

	colorBackground = color.RGBA{24, 28, 32, 255}
)

// craftKey marks the craft in the sprite map; volume IDs start at 1
const craftKey uint64 = 0

// SpriteRenderer draws snapshots as flat shapes seen from above. It keeps
// one sprite per volume and moves it each frame.
type SpriteRenderer struct {
	sink    spriteSink
	camera  *CameraSystem
	sprites map[uint64]*sprite
	hud     *hud
}

// NewSpriteRenderer creates a renderer drawing into sink through camera
func NewSpriteRenderer(sink spriteSink, camera *CameraSystem, bonusMs int64) *SpriteRenderer {
	return &SpriteRenderer{
		sink:    sink,
		camera:  camera,
		sprites: make(map[uint64]*sprite),
		hud:     newHUD(sink, bonusMs),
	}
}

// Render implements render.Renderer
func (r *SpriteRenderer) Render(snap engine.Snapshot) error {
	r.camera.Follow(snap.Pose.Position, snap.View)

	for _, ob := range snap.Obstacles {
		r.placeVolume(ob, common.Rectangle{}, colorObstacle)
	}
	for _, cp := range snap.Checkpoints {
		c := colorRing
		switch {
		case cp.Active:
			c = colorActive
		case cp.Triggered:
			c = colorPassed
		}
		r.placeVolume(cp, common.Circle{BorderWidth: 2, BorderColor: c}, colorClear)
	}
	r.placeVolume(snap.Goal, common.Rectangle{BorderWidth: 3, BorderColor: colorGoal}, colorClear)

	craft := r.sprite(craftKey)
	craft.Drawable = common.Triangle{}
	craft.Color = colorCraft
	if snap.Blink {
		craft.Color = colorBlink
	}
	r.place(craft, snap.Pose.Position, 1.2, 2, snap.Pose.Facing)

	r.hud.update(snap, r.camera.width)
	return nil
}

func (r *SpriteRenderer) placeVolume(v engine.VolumeView, drawable common.Drawable, fill color.Color) {
	s := r.sprite(v.ID)
	s.Drawable = drawable
	s.Color = fill
	s.Hidden = !v.Visible

	width := 2 * v.Size
	depth := 2 * v.Size
	if v.Kind == "checkpoint" {
		// rings are thin discs standing on edge
		depth = 0.6
	}
	r.place(s, v.Position, width, depth, v.Yaw)
}

// place centres a sprite on p with its world footprint and yaw
func (r *SpriteRenderer) place(s *sprite, p mgl64.Vec3, width, depth, yaw float64) {
	center := r.camera.WorldToScreen(p)
	s.Width = r.camera.Length(width)
	s.Height = r.camera.Length(depth)
	s.Position = engo.Point{X: center.X - s.Width/2, Y: center.Y - s.Height/2}
	// facing is counter-clockwise seen from above, screen rotation clockwise
	s.Rotation = float32(-yaw)
}

// sprite returns the sprite for key, adding it to the sink on first use
func (r *SpriteRenderer) sprite(key uint64) *sprite {
	if s, ok := r.sprites[key]; ok {
		return s
	}
	s := &sprite{BasicEntity: ecs.NewBasic()}
	r.sprites[key] = s
	r.sink.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	return s
}

// Close implements render.Renderer by removing every sprite
func (r *SpriteRenderer) Close() error {
	for key, s := range r.sprites {
		r.sink.Remove(s.BasicEntity)
		delete(r.sprites, key)
	}
	r.hud.close()
	return nil
}

var _ render.Renderer = (*SpriteRenderer)(nil)
