package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateOutputPath validates a destination path for an exported image.
//
// The rules are deliberately narrow:
//   - Path cannot be empty or a bare directory ("out/")
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//
// Whether the directory exists or is writable is left to the export step,
// which reports those failures as [ErrCodeExport].
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || filepath.Base(path) == "." {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}

// roleNameRegex matches palette role names: lowercase words joined by dashes
// or underscores (e.g. "panel-background", "accent_green").
var roleNameRegex = regexp.MustCompile(`^[a-z][a-z0-9]*([-_][a-z0-9]+)*$`)

// ValidateRoleName validates a palette role name.
func ValidateRoleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidColor, "role name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidColor, "role name too long (max 64 characters): %q", name)
	}
	if !roleNameRegex.MatchString(name) {
		return New(ErrCodeInvalidColor, "invalid role name: %q", name)
	}
	return nil
}
