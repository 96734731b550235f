package scene

import (
	"fmt"

	"github.com/chazu/carve/pkg/kernel"
)

// Kind enumerates the entity variants.
type Kind int

const (
	KindSolid Kind = iota // a mesh with material
	KindGroup             // an ordered list of child entities
)

func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Material is the appearance token attached to a solid. It is opaque to the
// geometry code and only carried along.
type Material struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Color string `json:"color" yaml:"color"` // "#rrggbb"
}

// Palette is the set of colours handed out to new solids in turn.
var Palette = []string{
	"#2196F3", // blue
	"#4CAF50", // green
	"#FFC107", // amber
	"#F44336", // red
	"#9C27B0", // purple
	"#00BCD4", // cyan
	"#FF9800", // orange
	"#795548", // brown
}

// Entity is an element of the scene graph.
type Entity struct {
	ID        EntityID
	Kind      Kind
	Name      string
	Transform Transform // relative to the owning group, or world when top-level
	Data      EntityData
}

// EntityData is the interface for kind-specific entity payloads.
type EntityData interface {
	entityData() // marker method restricting implementations to this package
}

// SolidData is the payload of a KindSolid entity. Mesh is in object space and
// is never modified after the entity is created.
type SolidData struct {
	Mesh     *kernel.Mesh
	Material Material
	IsHole   bool
}

func (SolidData) entityData() {}

// GroupData is the payload of a KindGroup entity. Each child's transform is
// relative to the group.
type GroupData struct {
	Children []EntityID
}

func (GroupData) entityData() {}

// Solid returns the solid payload. It panics if the entity is a group.
func (e *Entity) Solid() SolidData {
	d, ok := e.Data.(SolidData)
	if !ok {
		panic(fmt.Sprintf("scene: entity %s is a %s, not a solid", e.ID.Short(), e.Kind))
	}
	return d
}

// Children returns the group's child ids, or nil for a solid.
func (e *Entity) Children() []EntityID {
	if d, ok := e.Data.(GroupData); ok {
		return d.Children
	}
	return nil
}
