// pkg/render/camera.go
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-ringrace/pkg/engine"
	"github.com/opd-ai/go-ringrace/pkg/physics"
)

// Rig is a look-at camera placed relative to the craft
type Rig struct {
	Eye    mgl64.Vec3
	Center mgl64.Vec3
	Up     mgl64.Vec3
}

type rigOffset struct {
	dist   float64
	height float64
	// eyeTurn rotates only the eye around the craft
	eyeTurn float64
}

var rigOffsets = map[engine.CameraType]rigOffset{
	engine.CameraBack:     {dist: 2.3, height: 1.0},
	engine.CameraTopFixed: {dist: 0.5, height: 0.55, eyeTurn: 40},
	engine.CameraTopCar:   {dist: 6.5, height: 3.0},
	engine.CameraPilot:    {dist: 1.0, height: 1.05},
	engine.CameraMouse:    {dist: 2.3, height: 1.0},
}

// RigFor places the camera for the given pose. The eye sits behind the
// craft and looks through it along its facing.
func RigFor(pose physics.Pose, camera engine.CameraType) Rig {
	off, ok := rigOffsets[camera]
	if !ok {
		panic("render: unknown camera type " + camera.String())
	}

	p := pose.Position
	eyeRad := mgl64.DegToRad(pose.Facing + off.eyeTurn)
	rad := mgl64.DegToRad(pose.Facing)

	return Rig{
		Eye: p.Add(mgl64.Vec3{
			off.dist * math.Sin(eyeRad),
			off.height,
			off.dist * math.Cos(eyeRad),
		}),
		Center: p.Add(mgl64.Vec3{
			-off.dist * math.Sin(rad),
			off.height,
			-off.dist * math.Cos(rad),
		}),
		Up: mgl64.Vec3{0, 1, 0},
	}
}

// View returns the view matrix. The mouse camera orbits the look-at frame
// by the pointer angles after pulling back by the eye distance.
func (r Rig) View(view engine.Presentation) mgl64.Mat4 {
	m := mgl64.LookAtV(r.Eye, r.Center, r.Up)
	if view.Camera != engine.CameraMouse {
		return m
	}
	return m.
		Mul4(mgl64.Translate3D(0, 0, view.EyeDist)).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(view.ViewBeta))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(view.ViewAlpha)))
}

// Heading is the yaw the rig looks along, in the craft's facing convention
func (r Rig) Heading() float64 {
	return physics.HeadingTo(r.Eye, r.Center)
}
