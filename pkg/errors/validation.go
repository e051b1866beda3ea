package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxPathLength bounds output paths. Most filesystems cap a full path at 4096.
const maxPathLength = 4096

// ValidateOutputPath checks a path the CLI is about to write.
// Absolute and relative paths are both accepted, since the user chose them.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must name a file: no trailing separator, no "." or ".." as the last element
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid control characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	switch filepath.Base(path) {
	case ".", "..":
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}
