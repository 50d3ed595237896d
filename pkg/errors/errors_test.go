package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "need at least %d modules", 2)

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}

	if err.Message != "need at least 2 modules" {
		t.Errorf("Message = %v, want %v", err.Message, "need at least 2 modules")
	}

	expected := "INVALID_CONFIG: need at least 2 modules"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("stack underflow")
	err := Wrap(ErrCodeInvalidExpression, cause, "pack")

	if err.Code != ErrCodeInvalidExpression {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidExpression)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "INVALID_EXPRESSION: pack: stack underflow"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
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
			err:      New(ErrCodeInvariant, "test"),
			code:     ErrCodeInvariant,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvariant, "test"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeInternal,
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
		{"Error type", New(ErrCodeInvalidModule, "test"), ErrCodeInvalidModule},
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
	if got := UserMessage(New(ErrCodeInvalidInput, "friendly message")); got != "friendly message" {
		t.Errorf("UserMessage() = %q, want %q", got, "friendly message")
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain error")
	}
}

func TestIsInvalid(t *testing.T) {
	if !IsInvalid(New(ErrCodeInvalidExpression, "x")) {
		t.Error("IsInvalid(INVALID_EXPRESSION) = false, want true")
	}
	if IsInvalid(New(ErrCodeInvariant, "x")) {
		t.Error("IsInvalid(INVARIANT_VIOLATION) = true, want false")
	}
	if IsInvalid(errors.New("plain")) {
		t.Error("IsInvalid(plain) = true, want false")
	}
}
