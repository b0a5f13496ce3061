package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pulsegrid/pkg/errors"
	"github.com/matzehuels/pulsegrid/pkg/layout"
)

// =============================================================================
// Snapshots
// =============================================================================

// ReadSnapshot decodes a snapshot and checks its schema version.
func ReadSnapshot(r io.Reader) (layout.Snapshot, error) {
	var s layout.Snapshot
	if err := decode(r, &s); err != nil {
		return layout.Snapshot{}, err
	}
	if err := errors.ValidateSnapshotVersion(s.Version); err != nil {
		return layout.Snapshot{}, err
	}
	return s, nil
}

// ReadSnapshotFile reads a snapshot from path.
func ReadSnapshotFile(path string) (layout.Snapshot, error) {
	f, err := open(path)
	if err != nil {
		return layout.Snapshot{}, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// WriteSnapshot encodes s as indented JSON.
func WriteSnapshot(s layout.Snapshot, w io.Writer) error {
	return encode(s, w)
}

// WriteSnapshotFile writes s to path with 0644 permissions.
func WriteSnapshotFile(s layout.Snapshot, path string) error {
	return writeFile(path, func(w io.Writer) error { return encode(s, w) })
}

// MarshalSnapshot returns the canonical encoding of s, which is also what
// cache keys are hashed from.
func MarshalSnapshot(s layout.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Geometry
// =============================================================================

// ReadGeometry decodes resolved geometry.
func ReadGeometry(r io.Reader) (Geometry, error) {
	var g Geometry
	if err := decode(r, &g); err != nil {
		return Geometry{}, err
	}
	if err := errors.ValidateSnapshotVersion(g.Version); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// ReadGeometryFile reads geometry from path.
func ReadGeometryFile(path string) (Geometry, error) {
	f, err := open(path)
	if err != nil {
		return Geometry{}, err
	}
	defer f.Close()
	return ReadGeometry(f)
}

// WriteGeometry encodes g as indented JSON.
func WriteGeometry(g Geometry, w io.Writer) error {
	return encode(g, w)
}

// WriteGeometryFile writes g to path.
func WriteGeometryFile(g Geometry, path string) error {
	return writeFile(path, func(w io.Writer) error { return encode(g, w) })
}

// MarshalGeometry returns the canonical encoding of g.
func MarshalGeometry(g Geometry) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Internal
// =============================================================================

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode")
	}
	return nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
