package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	assert.True(t, strings.HasPrefix(info, "sauco "+Version+" (commit: "))
	assert.True(t, strings.HasSuffix(info, ")"))
	assert.Equal(t, Version, Info())
}

func TestFullInfo_Stamped(t *testing.T) {
	commit, date := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = commit, date })

	GitCommit = "abc1234"
	BuildDate = "2026-10-01"
	assert.Equal(t, "sauco "+Version+" (commit: abc1234, built: 2026-10-01)", FullInfo())
	assert.Equal(t, "abc1234", Commit())
}

func TestCommit_Unstamped(t *testing.T) {
	commit := GitCommit
	t.Cleanup(func() { GitCommit = commit })

	GitCommit = ""
	// the VCS revision when the toolchain recorded one, else "unknown"
	assert.NotEmpty(t, Commit())
}

func TestBuildID(t *testing.T) {
	id := BuildID()
	assert.Len(t, id, 16)
	assert.Equal(t, id, BuildID(), "computed once")
}
