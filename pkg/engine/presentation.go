// pkg/engine/presentation.go
package engine

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-ringrace/pkg/config"
)

// CameraType selects how the renderer frames the craft
type CameraType int

const (
	CameraBack CameraType = iota
	CameraTopFixed
	CameraTopCar
	CameraPilot
	CameraMouse
	cameraTypeCount
)

var cameraNames = [...]string{"back", "top_fixed", "top_car", "pilot", "mouse"}

// String returns the camera name. Unknown values are a programming error.
func (c CameraType) String() string {
	if c < 0 || c >= cameraTypeCount {
		panic(fmt.Sprintf("engine: unknown camera type %d", int(c)))
	}
	return cameraNames[c]
}

// ParseCamera maps a camera name to a CameraType
func ParseCamera(name string) (CameraType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range cameraNames {
		if n == candidate {
			return CameraType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown camera %q", name)
}

// Limits applied to pointer-driven view changes
const (
	MinViewBeta = 5.0
	MaxViewBeta = 90.0
	MinEyeDist  = 1.0
	ZoomFactor  = 0.9
)

// Presentation holds the view settings the renderer reads each frame. The
// session owns it and changes it only in response to input.
type Presentation struct {
	Camera    CameraType `msgpack:"camera"`
	Wireframe bool       `msgpack:"wireframe"`
	EnvMap    bool       `msgpack:"env_map"`
	Headlight bool       `msgpack:"headlight"`
	Shadow    bool       `msgpack:"shadow"`
	ViewAlpha float64    `msgpack:"view_alpha"`
	ViewBeta  float64    `msgpack:"view_beta"`
	EyeDist   float64    `msgpack:"eye_dist"`
}

// NewPresentation builds presentation settings from config
func NewPresentation(c config.PresentationConfig) (*Presentation, error) {
	camera, err := ParseCamera(c.Camera)
	if err != nil {
		return nil, err
	}
	return &Presentation{
		Camera:    camera,
		Wireframe: c.Wireframe,
		EnvMap:    c.EnvMap,
		Headlight: c.Headlight,
		Shadow:    c.Shadow,
		ViewAlpha: c.ViewAlpha,
		ViewBeta:  clamp(c.ViewBeta, MinViewBeta, MaxViewBeta),
		EyeDist:   max(c.EyeDist, MinEyeDist),
	}, nil
}

// CycleCamera advances to the next camera type, wrapping around
func (p *Presentation) CycleCamera() {
	p.Camera = (p.Camera + 1) % cameraTypeCount
}

// applyPointer updates view angles and zoom from a pointer event
func (p *Presentation) applyPointer(ev PointerEvent) {
	switch ev.Kind {
	case PointerMotion:
		p.ViewAlpha = float64(ev.Y)
		p.ViewBeta = clamp(float64(ev.X), MinViewBeta, MaxViewBeta)
	case PointerWheel:
		if ev.X < 0 {
			p.EyeDist = max(p.EyeDist*ZoomFactor, MinEyeDist)
		} else if ev.X > 0 {
			p.EyeDist /= ZoomFactor
		}
	}
}

// toggle flips a presentation flag bound to a function key and returns
// the setting name and new value
func (p *Presentation) toggle(k Key) (string, string, bool) {
	switch k {
	case KeyF1:
		p.CycleCamera()
		return "camera", p.Camera.String(), true
	case KeyF2:
		p.Wireframe = !p.Wireframe
		return "wireframe", fmt.Sprint(p.Wireframe), true
	case KeyF3:
		p.EnvMap = !p.EnvMap
		return "env_map", fmt.Sprint(p.EnvMap), true
	case KeyF4:
		p.Headlight = !p.Headlight
		return "headlight", fmt.Sprint(p.Headlight), true
	case KeyF5:
		p.Shadow = !p.Shadow
		return "shadow", fmt.Sprint(p.Shadow), true
	default:
		return "", "", false
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
