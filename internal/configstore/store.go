// internal/configstore/store.go

// Package configstore manages versioned scoring configurations: an
// append-only version log with a single active pointer. Published versions
// are immutable; publishing a new version never alters any previously
// computed score.
package configstore

import (
	"context"
	"errors"

	"screening-workers/internal/scoring"
)

// ErrNotFound is returned when no config exists for the requested version,
// or when GetActive is called before any config has been published.
var ErrNotFound = errors.New("scoring config not found")

// Store is the scoring configuration store contract.
//
// Publish must be serialized (single writer); reads never block on a
// publish and never observe a partially written config. Configs returned
// by any method are defensive copies.
type Store interface {
	// Publish validates cfg, assigns the next version number, and makes it
	// the active config for subsequent scoring only. Invalid configs are
	// rejected with *scoring.ValidationError without mutating state. The
	// Version and CreatedAt fields of cfg are ignored and assigned by the
	// store.
	Publish(ctx context.Context, cfg scoring.Config) (int, error)

	// GetActive returns the currently active config.
	GetActive(ctx context.Context) (scoring.Config, error)

	// GetByVersion returns the config published as version v, unchanged
	// from the moment it was published.
	GetByVersion(ctx context.Context, v int) (scoring.Config, error)
}
