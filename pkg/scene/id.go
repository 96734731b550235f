package scene

import (
	"github.com/google/uuid"
)

// EntityID identifies an entity for the lifetime of the process. Ids are
// never reused, even after the entity is deleted.
type EntityID uuid.UUID

// NewEntityID returns a fresh random id.
func NewEntityID() EntityID {
	return EntityID(uuid.New())
}

// ParseEntityID parses the canonical string form of an id.
func ParseEntityID(s string) (EntityID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, err
	}
	return EntityID(u), nil
}

// IsZero returns true if the id is the zero value.
func (id EntityID) IsZero() bool {
	return id == EntityID{}
}

// String returns the canonical hyphenated form.
func (id EntityID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 8 hex characters for display.
func (id EntityID) Short() string {
	return id.String()[:8]
}

// MarshalText implements encoding.TextMarshaler.
func (id EntityID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *EntityID) UnmarshalText(b []byte) error {
	parsed, err := ParseEntityID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
