package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pulsegrid/pkg/config"
	"github.com/matzehuels/pulsegrid/pkg/diagram"
	"github.com/matzehuels/pulsegrid/pkg/errors"
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

// workspace isolates config and cache directories and writes the sample
// diagrams. It returns the directory holding them.
func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	for name, src := range map[string]string{"echo.pg": echo, "loop.pg": loop} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestParseCommand(t *testing.T) {
	dir := workspace(t)
	out := mustRun(t, "parse", filepath.Join(dir, "echo.pg"))
	if !strings.Contains(out, "Parsed echo") || !strings.Contains(out, "4 boxes") {
		t.Errorf("output:\n%s", out)
	}

	snap, err := diagram.ReadSnapshotFile(filepath.Join(dir, "echo.snapshot.json"))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "echo" || countEntities(snap.Root) != 4 {
		t.Errorf("snapshot %q has %d entities", snap.Name, countEntities(snap.Root))
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := workspace(t)
	input := filepath.Join(dir, "echo.pg")

	first := mustRun(t, "layout", input)
	if !strings.Contains(first, iconFresh) {
		t.Errorf("first run not fresh:\n%s", first)
	}
	second := mustRun(t, "layout", input)
	if !strings.Contains(second, iconCached) {
		t.Errorf("second run not cached:\n%s", second)
	}

	geo, err := diagram.ReadGeometryFile(filepath.Join(dir, "echo.layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(geo.Boxes) != 4 || geo.Frame.W == 0 {
		t.Errorf("geometry has %d boxes, frame %+v", len(geo.Boxes), geo.Frame)
	}

	// A snapshot written by parse lays out the same way.
	mustRun(t, "parse", input)
	out := filepath.Join(dir, "from-snapshot.json")
	mustRun(t, "layout", "--no-cache", "-o", out, filepath.Join(dir, "echo.snapshot.json"))
	again, err := diagram.ReadGeometryFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if again.Frame != geo.Frame {
		t.Errorf("snapshot frame %+v, DSL frame %+v", again.Frame, geo.Frame)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := workspace(t)
	base := filepath.Join(dir, "out")
	mustRun(t, "render", "-f", "svg,json", "-o", base, filepath.Join(dir, "echo.pg"))

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg artifact is not SVG")
	}
	if _, err := diagram.ReadGeometryFile(base + ".layout.json"); err != nil {
		t.Errorf("json artifact: %v", err)
	}

	mustRun(t, "render", "-s", "bindings", "-f", "dot", filepath.Join(dir, "loop.pg"))
	dot, err := os.ReadFile(filepath.Join(dir, "loop.bindings.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(dot, []byte("digraph")) {
		t.Errorf("dot artifact:\n%s", dot)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := workspace(t)
	bad := filepath.Join(dir, "bad.pg")
	os.WriteFile(bad, []byte(`diagram "x" { blob a }`), 0644)

	tests := []struct {
		name string
		args []string
		code errors.Code
		exit int
	}{
		{"bad format", []string{"render", "-f", "png", filepath.Join(dir, "echo.pg")}, errors.ErrCodeInvalidFormat, 2},
		{"bad source", []string{"layout", bad}, errors.ErrCodeInvalidSource, 2},
		{"strict cycle", []string{"check", "--strict", filepath.Join(dir, "loop.pg")}, errors.ErrCodeBindingCycle, 3},
		{"unknown box", []string{"inspect", "--box", "nope", filepath.Join(dir, "echo.pg")}, errors.ErrCodeNotFound, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if got := ExitCode(err); got != tt.exit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.exit)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	dir := workspace(t)

	out := mustRun(t, "check", filepath.Join(dir, "loop.pg"))
	if !strings.Contains(out, "binding cycle on x") {
		t.Errorf("cycle not reported:\n%s", out)
	}
	out = mustRun(t, "check", filepath.Join(dir, "echo.pg"))
	if !strings.Contains(out, "No binding cycles") {
		t.Errorf("clean diagram:\n%s", out)
	}
}

func TestInspectCommand(t *testing.T) {
	dir := workspace(t)
	input := filepath.Join(dir, "echo.pg")

	out := mustRun(t, "inspect", "--plain", input)
	for _, id := range []string{"channel", "rf", "p90", "p180"} {
		if !strings.Contains(out, id) {
			t.Errorf("table missing %s:\n%s", id, out)
		}
	}

	out = mustRun(t, "inspect", "--box", "channel", input)
	if !strings.Contains(out, "axis row") || !strings.Contains(out, "content") {
		t.Errorf("grid detail:\n%s", out)
	}

	// Geometry files are read directly.
	mustRun(t, "layout", input)
	out = mustRun(t, "inspect", "--plain", filepath.Join(dir, "echo.layout.json"))
	if !strings.Contains(out, "p180") {
		t.Errorf("geometry input:\n%s", out)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := workspace(t)

	path := strings.TrimSpace(mustRun(t, "cache", "path"))
	if path != filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName) {
		t.Errorf("cache path = %q", path)
	}

	mustRun(t, "render", filepath.Join(dir, "echo.pg"))
	if out := mustRun(t, "cache", "prune"); !strings.Contains(out, "Pruned 0") {
		t.Errorf("prune removed fresh entries:\n%s", out)
	}
	if out := mustRun(t, "cache", "clear"); !strings.Contains(out, "Cleared") {
		t.Errorf("clear:\n%s", out)
	}
	if out := mustRun(t, "cache", "clear"); !strings.Contains(out, "Cache is empty") {
		t.Errorf("second clear:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	workspace(t)

	mustRun(t, "config", "init")
	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), appName, config.FileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := run(t, "config", "init"); err == nil {
		t.Error("init overwrote an existing file")
	}

	if out := mustRun(t, "config", "show"); !strings.Contains(out, "[layout]") {
		t.Errorf("show:\n%s", out)
	}

	custom := filepath.Join(t.TempDir(), "custom.toml")
	os.WriteFile(custom, []byte("[layout]\nstrict = true\nbogus = 1\n"), 0644)
	if _, err := run(t, "--config", custom, "config", "show"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown key accepted: %v", err)
	}
}

func TestConfigDrivesLayout(t *testing.T) {
	dir := workspace(t)
	custom := filepath.Join(t.TempDir(), "strict.toml")
	os.WriteFile(custom, []byte("[layout]\nstrict = true\n\n[cache]\nbackend = \"none\"\n"), 0644)

	_, err := run(t, "--config", custom, "layout", filepath.Join(dir, "loop.pg"))
	if !errors.Is(err, errors.ErrCodeBindingCycle) {
		t.Errorf("strict config ignored: %v", err)
	}
}
