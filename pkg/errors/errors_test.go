package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeCellOccupied, "cell %d,%d occupied", 1, 2)

	if err.Code != ErrCodeCellOccupied {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCellOccupied)
	}
	if err.Message != "cell 1,2 occupied" {
		t.Errorf("Message = %v, want %v", err.Message, "cell 1,2 occupied")
	}

	expected := "CELL_OCCUPIED: cell 1,2 occupied"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidSnapshot, cause, "decode snapshot")

	if err.Code != ErrCodeInvalidSnapshot {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidSnapshot)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if want := "INVALID_SNAPSHOT: decode snapshot: unexpected EOF"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeNegativeSize, "test"),
			code:     ErrCodeNegativeSize,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeNegativeSize, "test"),
			code:     ErrCodeInvalidRegion,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeUnsetCoordinate, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("layout: %w", New(ErrCodeMissingOwner, "inner")),
			code:     ErrCodeMissingOwner,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidRegion, "test"), ErrCodeInvalidRegion},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeUnsetCoordinate, "x"), true},
		{New(ErrCodeCellOccupied, "x"), true},
		{New(ErrCodeNegativeSize, "x"), false},
		{New(ErrCodeInvalidRegion, "x"), false},
		{New(ErrCodeMissingOwner, "x"), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := Recoverable(tt.err); got != tt.want {
			t.Errorf("Recoverable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCycleError(t *testing.T) {
	err := &CycleError{Axis: "x", IDs: []string{"a", "b"}}
	if want := "binding cycle on x axis through 2 entities"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if err.Code() != ErrCodeBindingCycle {
		t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeBindingCycle)
	}
}
