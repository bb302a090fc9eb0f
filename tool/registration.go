package tool

import (
	"context"
	"time"
)

// Status indicates registry-level availability of a tool category.
type Status string

const (
	StatusReady       Status = "ready"
	StatusUnverified  Status = "unverified"
	StatusUnavailable Status = "unavailable"
)

// Origin indicates how a category entered the registry.
type Origin string

const (
	OriginBuiltin Origin = "builtin"
	OriginCustom  Origin = "custom"
)

// Registration is the registry record for one tool category.
type Registration struct {
	Name         string     `json:"name"`
	Descriptor   Descriptor `json:"descriptor"`
	Origin       Origin     `json:"origin,omitempty"`
	Status       Status     `json:"status"`
	RegisteredAt time.Time  `json:"registered_at,omitempty"`
}

// Clone returns a deep copy of the registration.
func (r Registration) Clone() Registration {
	out := r
	out.Descriptor = r.Descriptor.Clone()
	return out
}

// Store abstracts persistence for custom category registrations. Builtins
// never pass through a store.
type Store interface {
	List(ctx context.Context) ([]Registration, error)
	Get(ctx context.Context, name string) (Registration, bool, error)
	Upsert(ctx context.Context, reg Registration) error
	Delete(ctx context.Context, name string) error
}
