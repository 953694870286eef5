// Package pathutil converts between the absolute paths sauco works with internally
// and the root-relative paths it shows to users and matches globs against.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.py", "/home/user/project") → "src/main.py"
//   - ToRelative("/other/location/file.py", "/home/user/project") → "/other/location/file.py" (outside root)
//   - ToRelative("src/main.py", "/home/user/project") → "src/main.py" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}

	// Outside the root the absolute path is clearer
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}

	return relPath
}

// ToSlashRelative is ToRelative with forward slashes, the form glob patterns are matched against
func ToSlashRelative(absPath, rootDir string) string {
	return filepath.ToSlash(ToRelative(absPath, rootDir))
}

// ToAbsolute resolves path against rootDir unless it is already absolute
func ToAbsolute(path, rootDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, path)
}
