package errors

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

// ValidateTableName validates a feed table file name such as "trips.txt".
// Table names come from view files and CLI flags and end up joined to a
// directory path, so they are held to a strict shape:
//   - No empty names
//   - No path separators or traversal sequences
//   - No control characters
//   - Lowercase letters, digits and underscores followed by ".txt"
func ValidateTableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidView, "table name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidView, "table name cannot contain path separators: %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidView, "table name contains invalid control characters")
		}
	}

	if !tableNameRegex.MatchString(name) {
		return New(ErrCodeInvalidView, "invalid table name: %q (want e.g. trips.txt)", name)
	}

	return nil
}

// tableNameRegex matches GTFS table file names.
var tableNameRegex = regexp.MustCompile(`^[a-z0-9_]+\.txt$`)

// ValidateArchivePath validates the name of an entry inside a feed archive
// before it is extracted to disk.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateArchivePath(p string) error {
	if p == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(p) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range p {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(p, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /): %q", p)
	}

	for _, part := range strings.Split(path.Clean(p), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..): %q", p)
		}
	}

	if strings.Contains(p, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes: %q", p)
	}

	return nil
}
