package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidManifest, "%s: missing %s", "/tmp/pkg", "version")

	if err.Code != ErrCodeInvalidManifest {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidManifest)
	}

	if err.Message != "/tmp/pkg: missing version" {
		t.Errorf("Message = %v, want %v", err.Message, "/tmp/pkg: missing version")
	}

	expected := "INVALID_MANIFEST: /tmp/pkg: missing version"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrCodeInstallerFailed, cause, "npm install")

	if err.Code != ErrCodeInstallerFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInstallerFailed)
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

	expected := "INSTALLER_FAILED: npm install: exit status 1"
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
			err:      New(ErrCodeUnresolvedDependency, "left-pad@^2"),
			code:     ErrCodeUnresolvedDependency,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnresolvedDependency, "left-pad@^2"),
			code:     ErrCodeNoVersions,
			expected: false,
		},
		{
			name:     "outermost code wins",
			err:      Wrap(ErrCodeInstallerFailed, New(ErrCodeInvalidManifest, "inner"), "outer"),
			code:     ErrCodeInstallerFailed,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("collect: %w", New(ErrCodeInvalidManifest, "x")),
			code:     ErrCodeInvalidManifest,
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

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidRequirement, "test"), ErrCodeInvalidRequirement},
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
		{
			name:     "Error type",
			err:      New(ErrCodeNoVersions, "no published versions of left-pad"),
			expected: "no published versions of left-pad",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeNetwork, errors.New("timeout"), "fetch packument"),
			expected: "fetch packument: timeout",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidManifest, "x"), ExitUsage},
		{New(ErrCodeFileNotFound, "x"), ExitUsage},
		{fmt.Errorf("link a: %w", New(ErrCodeUnresolvedDependency, "x")), ExitUnresolved},
		{New(ErrCodeNoVersions, "x"), ExitUnresolved},
		{Wrap(ErrCodeInstallerFailed, errors.New("exit status 1"), "npm install"), ExitFetch},
		{New(ErrCodeStoreCorrupt, "x"), ExitFailure},
		{errors.New("plain"), ExitFailure},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
