package errors

import (
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "rf", false},
		{"with spaces", "90 pulse", false},
		{"unicode", "τ/2", false},

		{"too long", strings.Repeat("a", MaxLabelLength+1), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " rf", true},
		{"trailing space", "rf ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateLabel(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateSnapshotVersion(t *testing.T) {
	tests := []struct {
		version int
		wantErr bool
	}{
		{0, false},
		{SnapshotVersion, false},
		{SnapshotVersion + 1, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := ValidateSnapshotVersion(tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSnapshotVersion(%d) error = %v, wantErr %v", tt.version, err, tt.wantErr)
		}
		if err != nil && GetCode(err) != ErrCodeInvalidSnapshot {
			t.Errorf("ValidateSnapshotVersion(%d) code = %v", tt.version, GetCode(err))
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"svg", "svg", false},
		{"upper case", "PDF", false},
		{"padded", " svg ", false},
		{"empty", "", true},
		{"unknown", "png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormat(tt.format, "svg", "pdf")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateFormat(%q) returned wrong error code: %v", tt.format, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "fid.json", false},
		{"valid nested", "diagrams/fid/snapshot.json", false},
		{"valid absolute", "/tmp/out.svg", false},
		{"valid with dots", "v1.2.3/fid.pg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeUnsetCoordinate,
		ErrCodeNegativeSize,
		ErrCodeInvalidRegion,
		ErrCodeCellOccupied,
		ErrCodeMissingOwner,
		ErrCodeBindingCycle,
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidSnapshot,
		ErrCodeInvalidSource,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
