// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/engine"
)

// PixelsPerUnit is the top-down scale at the default eye distance
const PixelsPerUnit = 8.0

// defaultEyeDist is the eye distance at which the zoom is 1
const defaultEyeDist = 5.0

// CameraSystem follows the craft across the floor. Screen X is world X and
// screen Y is world Z, so the far end of the course is at the top.
type CameraSystem struct {
	// Target to follow
	target    mgl64.Vec3
	targetSet bool

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32

	// Smooth following
	followSpeed float32
	smoothing   bool

	width, height float32

	// Current camera state
	currentPos mgl64.Vec3
}

// NewCameraSystem creates a camera for a viewport of the given size
func NewCameraSystem(width, height float32) *CameraSystem {
	return &CameraSystem{
		zoom:        1.0,
		minZoom:     0.1,
		maxZoom:     defaultEyeDist / engine.MinEyeDist,
		followSpeed: 8.0,
		smoothing:   true,
		width:       width,
		height:      height,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update moves the camera toward its target
func (cs *CameraSystem) Update(dt float32) {
	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}
}

// updateCameraPosition smoothly moves the camera toward the target
func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}
	step := min(float64(cs.followSpeed*dt), 1)
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Mul(step))
}

// Follow points the camera at the craft and derives the zoom from the
// presentation's eye distance, so the wheel zoom applies here too.
func (cs *CameraSystem) Follow(target mgl64.Vec3, view engine.Presentation) {
	cs.SetTarget(target)
	if view.EyeDist > 0 {
		cs.SetZoom(float32(defaultEyeDist / view.EyeDist))
	}
}

// SetTarget sets the target position for the camera to follow
func (cs *CameraSystem) SetTarget(target mgl64.Vec3) {
	first := !cs.targetSet
	cs.target = target
	cs.targetSet = true

	if first || !cs.smoothing {
		cs.currentPos = target
	}
}

// ClearTarget clears the camera target
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// SetZoom sets the camera zoom level
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// Zoom returns the current zoom level
func (cs *CameraSystem) Zoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	return min(max(zoom, cs.minZoom), cs.maxZoom)
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// SetViewport updates the screen size, e.g. after a resize
func (cs *CameraSystem) SetViewport(width, height float32) {
	cs.width, cs.height = width, height
}

// Position returns the current camera position
func (cs *CameraSystem) Position() mgl64.Vec3 {
	return cs.currentPos
}

func (cs *CameraSystem) scale() float64 {
	return PixelsPerUnit * float64(cs.zoom)
}

// WorldToScreen converts a floor position to screen pixels
func (cs *CameraSystem) WorldToScreen(p mgl64.Vec3) engo.Point {
	return engo.Point{
		X: float32((p.X()-cs.currentPos.X())*cs.scale()) + cs.width/2,
		Y: float32((p.Z()-cs.currentPos.Z())*cs.scale()) + cs.height/2,
	}
}

// ScreenToWorld converts screen pixels to a floor position at height 0
func (cs *CameraSystem) ScreenToWorld(pt engo.Point) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(pt.X-cs.width/2)/cs.scale() + cs.currentPos.X(),
		0,
		float64(pt.Y-cs.height/2)/cs.scale() + cs.currentPos.Z(),
	}
}

// Length converts a world distance to pixels at the current zoom
func (cs *CameraSystem) Length(d float64) float32 {
	return float32(d * cs.scale())
}
