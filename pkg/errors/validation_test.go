package errors

import (
	"strings"
	"testing"
)

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple file", "diagram.png", false},
		{"nested", "docs/deployment_architecture.png", false},
		{"absolute", "/tmp/out.svg", false},

		{"empty", "", true},
		{"directory", "docs/", true},
		{"dot", ".", true},
		{"too long", strings.Repeat("a", 1100) + ".png", true},
		{"null byte", "out\x00.png", true},
		{"newline", "out\n.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateOutputPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateRoleName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single word", "text", false},
		{"dashed", "panel-background", false},
		{"underscored", "green_l", false},
		{"with digits", "accent-2", false},

		{"empty", "", true},
		{"uppercase", "Panel", true},
		{"leading dash", "-panel", true},
		{"trailing dash", "panel-", true},
		{"space", "panel background", true},
		{"hex value", "#ffffff", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoleName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoleName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
