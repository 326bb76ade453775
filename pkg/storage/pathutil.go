package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UnknownName replaces empty display names. Several unnamed resources in one
// workspace therefore share a file; see DESIGN.md.
const UnknownName = "Unknown"

// SafeName turns a display name into a single path element. Path separators
// become "_" and the "." / ".." elements are rejected by mapping them to
// UnknownName. Everything else, spaces included, is kept as-is.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(name)
	if name == "" || name == "." || name == ".." {
		return UnknownName
	}
	return name
}

// ResolveWithin joins elems onto base and verifies that the result does not
// escape base. It returns the cleaned path.
func ResolveWithin(base string, elems ...string) (string, error) {
	target := filepath.Join(append([]string{base}, elems...)...)

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if absTarget != absBase && !strings.HasPrefix(absTarget, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("access denied: %s is outside %s", target, base)
	}
	return target, nil
}
