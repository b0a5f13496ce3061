// Package cache stores layout results and rendered artifacts.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps JSON entries under a directory (CLI default)
//   - [RedisCache] shares entries between API replicas
//   - [NullCache] disables caching
//
// Keys are built by a [Keyer] from content hashes, so a cached geometry is
// only reused for byte-identical snapshots and identical engine options.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	// TTLLayout applies to resolved geometry. Layout is a pure function of
	// its key, so entries only expire to bound disk use.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered SVG/PDF/DOT output.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys the geometry computed from a snapshot.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys one rendered format of a geometry.
	ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the engine settings that change a layout result.
type LayoutKeyOpts struct {
	Precision int  `json:"precision"`
	Strict    bool `json:"strict"`
	MaxSettle int  `json:"max_settle"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Renderer string  `json:"renderer"`
	Stroke   float64 `json:"stroke,omitempty"`
	Margin   float64 `json:"margin,omitempty"`
	Theme    string  `json:"theme,omitempty"`
}

// DefaultKeyer produces keys of the form kind:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", geometryHash, opts)
}
