package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pulsegrid/pkg/cache"
	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/observability"
)

// Cache key kinds reported to the cache hooks.
const (
	keyLayout   = "layout"
	keyArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// A Runner holds no results; several goroutines may share one with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-kind defaults when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer means the default keyer, a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	snap, err := Parse(opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap
	result.Stats.ParseTime = time.Since(parseStart)
	r.Logger.Debug("parsed diagram",
		"name", snap.Name,
		"bindings", len(snap.Bindings),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	geo, report, layoutHit, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	result.Geometry = geo
	result.Report = report
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Nodes = len(geo.Boxes)
	result.Stats.Bindings = len(geo.Bindings)
	if report != nil {
		result.Stats.Cycles = len(report.Cycles)
	}
	result.CacheInfo.LayoutHit = layoutHit
	r.Logger.Info("computed layout",
		"boxes", len(geo.Boxes),
		"frame", fmt.Sprintf("%gx%g", geo.Frame.W, geo.Frame.H),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, geo, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the geometry of snap with caching. The
// report is nil on a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, snap layout.Snapshot, opts Options) (diagram.Geometry, *layout.Report, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Geometry{}, nil, false, err
	}

	snapData, err := diagram.MarshalSnapshot(snap)
	if err != nil {
		return diagram.Geometry{}, nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(snapData), opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if geo, err := diagram.ReadGeometry(bytes.NewReader(data)); err == nil {
				hooks.OnCacheHit(ctx, keyLayout)
				return geo, nil, true, nil
			}
			// Undecodable entries fall through and are overwritten.
		} else if err != nil {
			r.Logger.Warn("cache read failed", "kind", keyLayout, "error", err)
		}
		hooks.OnCacheMiss(ctx, keyLayout)
	}

	geo, report, err := ComputeLayout(ctx, snap, opts)
	if err != nil {
		return diagram.Geometry{}, report, false, err
	}

	if data, err := diagram.MarshalGeometry(geo); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err == nil {
			hooks.OnCacheSet(ctx, keyLayout, len(data))
		}
	}
	return geo, report, false, nil
}

// Layout is LayoutWithCacheInfo without the report and hit flag.
func (r *Runner) Layout(ctx context.Context, snap layout.Snapshot, opts Options) (diagram.Geometry, error) {
	geo, _, _, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	return geo, err
}

// RenderWithCacheInfo produces the requested artifacts with caching. The
// hit flag is true only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, geo diagram.Geometry, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	geoData, err := diagram.MarshalGeometry(geo)
	if err != nil {
		return nil, false, fmt.Errorf("serialize geometry for cache key: %w", err)
	}
	geoHash := cache.Hash(geoData)
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(geoHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, keyArtifact)
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnCacheHit(ctx, keyArtifact)
			return artifacts, true, nil
		}
	}

	rendered, err := RenderGeometry(ctx, geo, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(geoHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err == nil {
			hooks.OnCacheSet(ctx, keyArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, geo diagram.Geometry, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, geo, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
