package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/pulsegrid/pkg/cache"
	"github.com/matzehuels/pulsegrid/pkg/config"
	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/geom"
	"github.com/matzehuels/pulsegrid/pkg/layout"
	"github.com/matzehuels/pulsegrid/pkg/observability"
	"github.com/matzehuels/pulsegrid/pkg/render"
)

const echo = `diagram "echo" {
  grid channel {
    bar   rf  size 80x4 grid 1,0 span 1x3 grow x
    pulse p90 size 10x20 column 0 top
    pulse p180 size 10x30 column 2 both
  }
}`

const loop = `diagram "loop" {
  group g {
    box a size 5x5 at 0,0 bind b x far near
    box b size 5x5 at 10,0 bind a x near far
  }
}`

func intPtr(v int) *int { return &v }

func TestValidateAndSetDefaults(t *testing.T) {
	snap := &layout.Snapshot{}
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"both inputs", Options{Source: echo, Snapshot: snap}, errors.ErrCodeInvalidInput},
		{"precision", Options{Source: echo, Precision: intPtr(12)}, errors.ErrCodeInvalidInput},
		{"max settle", Options{Source: echo, MaxSettle: -1}, errors.ErrCodeInvalidInput},
		{"min cell", Options{Source: echo, MinCell: geom.Size{W: -1}}, errors.ErrCodeNegativeSize},
		{"dot wireframe", Options{Source: echo, Formats: []string{"dot"}}, errors.ErrCodeInvalidFormat},
		{"pdf bindings", Options{Source: echo, Style: render.StyleBindings, Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"unknown style", Options{Source: echo, Style: "tower"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	opts := Options{Source: echo}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Style != DefaultStyle || len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("defaults = %s %v", opts.Style, opts.Formats)
	}
	if opts.MaxSettle != layout.DefaultMaxSettle || opts.Render.Stroke == 0 || opts.Logger == nil {
		t.Errorf("layout/render defaults not applied: %+v", opts)
	}
}

func TestParseInputs(t *testing.T) {
	snap, err := Parse(Options{Source: echo})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "echo" || snap.Root.Type != layout.TypeGrid {
		t.Fatalf("snapshot = %q %s", snap.Name, snap.Root.Type)
	}

	data, err := diagram.MarshalSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	if !IsSnapshotJSON(string(data)) {
		t.Fatal("marshalled snapshot not detected as JSON")
	}
	fromJSON, err := Parse(Options{Source: "\n  " + string(data)})
	if err != nil {
		t.Fatal(err)
	}
	if fromJSON.Root.ID != snap.Root.ID || len(fromJSON.Root.Children) != 3 {
		t.Errorf("JSON source decoded to %+v", fromJSON.Root)
	}

	direct, err := Parse(Options{Snapshot: &snap})
	if err != nil || direct.Name != "echo" {
		t.Errorf("snapshot input = %q, %v", direct.Name, err)
	}

	withDefaults, err := Parse(Options{Source: echo, MinCell: geom.Size{W: 4, H: 4}, AxisRow: intPtr(0)})
	if err != nil {
		t.Fatal(err)
	}
	if g := withDefaults.Root.Grid; g.MinCell != (geom.Size{W: 4, H: 4}) || g.AxisRow != 0 {
		t.Errorf("grid defaults = %+v", g)
	}
}

func TestExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()
	ctx := context.Background()
	opts := Options{Source: echo, Formats: []string{"svg", "json"}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run hit the cache: %+v", first.CacheInfo)
	}
	if first.Report == nil || first.Stats.Nodes != 4 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if !bytes.Contains(first.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	geo, err := diagram.ReadGeometry(bytes.NewReader(first.Artifacts["json"]))
	if err != nil {
		t.Fatal(err)
	}
	if len(geo.Boxes) != 4 {
		t.Errorf("json artifact has %d boxes", len(geo.Boxes))
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run missed: %+v", second.CacheInfo)
	}
	if second.Report != nil {
		t.Error("cached layout has a report")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh hit the cache: %+v", third.CacheInfo)
	}
}

func TestExecuteBindings(t *testing.T) {
	opts := Options{Source: loop, Style: render.StyleBindings, Formats: []string{"dot"}}
	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(result.Artifacts["dot"])
	if !strings.Contains(dot, `"a" -> "b"`) || !strings.Contains(dot, `"b" -> "a"`) {
		t.Errorf("DOT missing binding edges:\n%s", dot)
	}
	if result.Stats.Cycles != 1 {
		t.Errorf("cycles = %d, want 1", result.Stats.Cycles)
	}
}

func TestStrictCycle(t *testing.T) {
	opts := Options{Source: loop, Strict: true}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeBindingCycle) {
		t.Errorf("err = %v, want BINDING_CYCLE", err)
	}
}

type recorder struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	cycles []string
	stats  observability.LayoutStats
}

func (r *recorder) OnCycle(_ context.Context, _, axis string, entities int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles = append(r.cycles, axis)
}

func (r *recorder) OnLayoutComplete(_ context.Context, _ string, stats observability.LayoutStats, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = stats
}

func TestLayoutHooks(t *testing.T) {
	rec := &recorder{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	snap, err := Parse(Options{Source: loop})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ComputeLayout(context.Background(), snap, Options{}); err != nil {
		t.Fatal(err)
	}
	if len(rec.cycles) != 1 || rec.cycles[0] != "x" {
		t.Errorf("cycles = %v", rec.cycles)
	}
	if rec.stats.Nodes != 3 || rec.stats.Bindings != 2 || rec.stats.Cycles != 1 {
		t.Errorf("stats = %+v", rec.stats)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Strict = true
	cfg.Render.Format = "pdf"
	opts := FromConfig(cfg)
	if !opts.Strict || *opts.Precision != 2 || opts.Formats[0] != "pdf" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Render.Outline != cfg.Render.Outline || !opts.Render.ShowGrid {
		t.Errorf("render = %+v", opts.Render)
	}
}

func TestArtifactKeys(t *testing.T) {
	opts := Options{Source: echo}
	opts.ValidateAndSetDefaults()
	k := cache.NewDefaultKeyer()
	base := k.ArtifactKey("h", opts.ArtifactKeyOpts("svg"))

	styled := opts
	styled.Render.Outline = "#000000"
	font := opts
	font.Render.Font = []byte("font data")

	for name, o := range map[string]Options{"outline": styled, "font": font} {
		if k.ArtifactKey("h", o.ArtifactKeyOpts("svg")) == base {
			t.Errorf("%s change keeps the artifact key", name)
		}
	}
	if k.ArtifactKey("h", opts.ArtifactKeyOpts("pdf")) == base {
		t.Error("format change keeps the artifact key")
	}
}
