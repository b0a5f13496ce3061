package errors

import (
	"strings"
	"unicode"
)

// SnapshotVersion is the snapshot schema version this build reads and writes.
const SnapshotVersion = 1

// MaxLabelLength bounds entity labels so snapshots stay printable in the CLI.
const MaxLabelLength = 128

// ValidateLabel validates an entity label taken from a snapshot or DSL source.
//
// Labels are optional, so the empty string is accepted. Non-empty labels must:
//   - Not exceed MaxLabelLength characters
//   - Contain no control characters
//   - Contain no whitespace at either end
func ValidateLabel(label string) error {
	if label == "" {
		return nil
	}
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	if strings.TrimSpace(label) != label {
		return New(ErrCodeInvalidInput, "label %q has leading or trailing whitespace", label)
	}
	return nil
}

// ValidateSnapshotVersion rejects snapshots written by an incompatible schema.
// Version 0 is treated as "unversioned" and accepted as the current version.
func ValidateSnapshotVersion(v int) error {
	if v == 0 || v == SnapshotVersion {
		return nil
	}
	return New(ErrCodeInvalidSnapshot, "unsupported snapshot version %d (want %d)", v, SnapshotVersion)
}

// ValidateFormat checks an output format against the formats a renderer supports.
func ValidateFormat(format string, supported ...string) error {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	}
	for _, s := range supported {
		if f == s {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", format, strings.Join(supported, ", "))
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No parent-directory segments
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidInput, "path too long (max 500 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid control characters")
		}
	}
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return New(ErrCodeInvalidInput, "path cannot contain parent directory references")
		}
	}
	return nil
}
