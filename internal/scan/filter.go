package scan

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/sauco/internal/parser"
)

// Filter decides which root-relative, slash-separated paths take part in a scan
type Filter struct {
	include []string
	exclude []string
}

// NewFilter builds a filter. An empty include list selects every file a grammar
// is registered for.
func NewFilter(include, exclude []string) *Filter {
	return &Filter{
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
	}
}

// Excluded reports whether path matches any exclusion pattern
func (f *Filter) Excluded(path string) bool {
	for _, pattern := range f.exclude {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			// patterns are validated with the config; a bad one never matches
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// ExcludedDir reports whether a whole directory can be pruned
func (f *Filter) ExcludedDir(path string) bool {
	return f.Excluded(path) || f.Excluded(path+"/")
}

// Included reports whether path matches an inclusion pattern
func (f *Filter) Included(path string) bool {
	if len(f.include) == 0 {
		return parser.Supports(path)
	}

	for _, pattern := range f.include {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}

// Match reports whether a file path is scanned
func (f *Filter) Match(path string) bool {
	return !f.Excluded(path) && f.Included(path)
}
