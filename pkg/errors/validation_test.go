package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "left-pad", false},
		{"underscore", "my_package", false},
		{"dot", "lodash.merge", false},
		{"scoped", "@scope/package", false},
		{"max length", strings.Repeat("a", 214), false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 215), true},
		{"parent segment", "../bar", true},
		{"scoped parent", "@scope/..", true},
		{"current segment", ".", true},
		{"unscoped slash", "foo/bar", true},
		{"empty scope", "@/bar", true},
		{"three segments", "@a/b/c", true},
		{"trailing slash", "@a/", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1.0.0", false},
		{"2.0.0-beta.1", false},
		{"1.0.0+build.5", false},
		{"", true},
		{"..", true},
		{"../1", true},
		{"1.0.0 ", true},
		{"a\\b", true},
	}

	for _, tt := range tests {
		err := ValidateVersion(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidPackage) {
			t.Errorf("ValidateVersion(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
		}
	}
}

func TestValidateNpmPackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "express", false},
		{"scoped", "@types/node", false},
		{"scoped with dash", "@babel/core-js", false},

		{"uppercase", "React", true},
		{"space", "left pad", true},
		{"leading dot", ".hidden", true},
		{"leading underscore", "_private", true},
		{"traversal", "../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNpmPackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNpmPackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidateNpmPackageName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}
