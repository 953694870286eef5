package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
)

// GitignorePattern is one parsed .gitignore line
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool
}

// LoadGitignore reads rootPath/.gitignore. A missing file yields no patterns.
func LoadGitignore(rootPath string) ([]GitignorePattern, error) {
	path := filepath.Join(rootPath, ".gitignore")
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, saucoerrors.NewFileError("open", path, err)
	}
	defer file.Close()

	return parseGitignore(file)
}

func parseGitignore(r io.Reader) ([]GitignorePattern, error) {
	var patterns []GitignorePattern
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, parsePattern(line))
	}
	return patterns, scanner.Err()
}

// parsePattern strips the negation, directory and anchoring modifiers
func parsePattern(line string) GitignorePattern {
	pattern := GitignorePattern{}

	if strings.HasPrefix(line, "!") {
		pattern.Negate = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		pattern.Directory = true
		line = strings.TrimSuffix(line, "/")
	}

	if strings.HasPrefix(line, "/") {
		pattern.Absolute = true
		line = line[1:]
	}

	pattern.Pattern = line
	return pattern
}

// GitignoreExclusions converts .gitignore patterns into doublestar exclusion globs.
// Negations are skipped.
func GitignoreExclusions(patterns []GitignorePattern) []string {
	var exclusions []string

	for _, pattern := range patterns {
		if pattern.Negate || pattern.Pattern == "" {
			continue
		}
		exclusions = append(exclusions, toGlob(pattern))
	}

	return DeduplicatePatterns(exclusions)
}

func toGlob(pattern GitignorePattern) string {
	p := pattern.Pattern
	// A slash in the middle anchors the pattern like a leading one does
	anchored := pattern.Absolute || strings.Contains(p, "/")

	prefix := "**/"
	if anchored {
		prefix = ""
	}

	if pattern.Directory {
		return prefix + p + "/**"
	}
	// Without a trailing slash the name matches files and whole directories
	return "{" + prefix + p + "," + prefix + p + "/**}"
}
