// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"
)

// ID is a unique identifier for an entity in the race world. IDs come from
// the ecs entity counter so the windowed front-end can key its basic
// entities by the same value.
type ID uint64

// GenerateID returns a fresh process-unique ID. Safe for concurrent use.
func GenerateID() ID {
	basic := ecs.NewBasic()
	return ID(basic.ID())
}

