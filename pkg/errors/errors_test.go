package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotARepository, "no repository at %s", "/tmp/nowhere")

	if err.Code != ErrCodeNotARepository {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNotARepository)
	}

	if err.Message != "no repository at /tmp/nowhere" {
		t.Errorf("Message = %v, want %v", err.Message, "no repository at /tmp/nowhere")
	}

	expected := "NOT_A_REPOSITORY: no repository at /tmp/nowhere"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRenderFailed, cause, "rendering svg")

	if err.Code != ErrCodeRenderFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRenderFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
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
			err:      New(ErrCodeEmptyRepository, "test"),
			code:     ErrCodeEmptyRepository,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeEmptyRepository, "test"),
			code:     ErrCodeNotARepository,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRenderFailed, New(ErrCodeInvalidFormat, "inner"), "outer"),
			code:     ErrCodeRenderFailed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInternal,
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

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeInvalidVizType, "test")); got != ErrCodeInvalidVizType {
		t.Errorf("CodeOf() = %v, want %v", got, ErrCodeInvalidVizType)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotARepository, "no repository found")); got != "no repository found" {
		t.Errorf("UserMessage() = %q, want %q", got, "no repository found")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain error")
	}
}
