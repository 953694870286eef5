package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitignore(t *testing.T) {
	content := `
# build output
/dist/
*.log
!keep.log
docs/generated
`
	patterns, err := parseGitignore(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, patterns, 4)

	assert.Equal(t, GitignorePattern{Pattern: "dist", Directory: true, Absolute: true}, patterns[0])
	assert.Equal(t, GitignorePattern{Pattern: "*.log"}, patterns[1])
	assert.Equal(t, GitignorePattern{Pattern: "keep.log", Negate: true}, patterns[2])
	assert.Equal(t, GitignorePattern{Pattern: "docs/generated"}, patterns[3])
}

func TestGitignoreExclusions(t *testing.T) {
	patterns, err := parseGitignore(strings.NewReader("/dist/\n*.log\n!keep.log\ncache/\ndocs/generated\n"))
	require.NoError(t, err)

	exclusions := GitignoreExclusions(patterns)
	assert.Equal(t, []string{
		"dist/**",
		"{**/*.log,**/*.log/**}",
		"**/cache/**",
		"{docs/generated,docs/generated/**}",
	}, exclusions)

	matches := func(path string) bool {
		for _, pattern := range exclusions {
			if ok, _ := doublestar.Match(pattern, path); ok {
				return true
			}
		}
		return false
	}

	assert.True(t, matches("dist/app.py"))
	assert.False(t, matches("src/dist/app.py"), "anchored to the root")
	assert.True(t, matches("server.log"))
	assert.True(t, matches("logs/today/server.log"))
	assert.True(t, matches("a/cache/b.py"))
	assert.True(t, matches("docs/generated/api.py"))
	assert.False(t, matches("src/main.py"))
}

func TestLoadGitignore(t *testing.T) {
	dir := t.TempDir()

	patterns, err := LoadGitignore(dir)
	require.NoError(t, err)
	assert.Empty(t, patterns, "missing .gitignore yields nothing")

	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n")
	patterns, err = LoadGitignore(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/build/**"}, GitignoreExclusions(patterns))
}
