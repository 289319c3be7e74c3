package scene

import (
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/scenehook/scenehook/internal/asset"
)

// Name is the authored name of a scene node. Names are stored in NFC so a
// name typed in code matches one exported by a tool that writes NFD.
type Name struct {
	Value string
}

func NewName(s string) Name { return Name{Value: norm.NFC.String(s)} }

func (n Name) String() string { return n.Value }

// Is reports whether the name equals s after normalization.
func (n Name) Is(s string) bool { return n.Value == norm.NFC.String(s) }

// Transform places a node relative to its parent.
type Transform struct {
	Translation [3]float64 `yaml:"translation"`
	Rotation    [4]float64 `yaml:"rotation"` // quaternion x, y, z, w
	Scale       [3]float64 `yaml:"scale"`
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float64{0, 0, 0, 1},
		Scale:    [3]float64{1, 1, 1},
	}
}

type Visibility struct {
	Visible bool
}

// Tags are free-form labels authored on a node.
type Tags []string

func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// Extras holds component payloads no decoder claimed, keyed by kind.
type Extras map[string]any

// Root requests that the scene behind Handle be spawned under the entity
// carrying it.
type Root struct {
	Handle asset.Handle
}

// InstanceID identifies one spawned occurrence of a scene.
type InstanceID uint64

func (id InstanceID) String() string { return "instance#" + strconv.FormatUint(uint64(id), 10) }

// Instance is attached to a Root entity once its scene has been queued for
// spawning.
type Instance struct {
	ID InstanceID
}
