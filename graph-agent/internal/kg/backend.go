package kg

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by a Backend that has nothing persisted yet.
var ErrNoSnapshot = errors.New("kg: no persisted graph")

// Backend persists whole-graph snapshots.
type Backend interface {
	Read(ctx context.Context) (*Snapshot, error)
	Write(ctx context.Context, snap *Snapshot) error
	// Location describes where snapshots live, for logs.
	Location() string
}
