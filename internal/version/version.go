package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Stamped at release time:
//
//	go build -ldflags "-X github.com/standardbeagle/sauco/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.3.0"
	GitCommit = ""
	BuildDate = ""
)

var (
	buildOnce sync.Once
	buildID   string
	vcsCommit string
	vcsDirty  bool
)

// Info returns the semantic version
func Info() string {
	return Version
}

// Commit returns the stamped commit, else the VCS revision recorded by the Go
// toolchain, else "unknown". A modified work tree is marked with "-dirty".
func Commit() string {
	if GitCommit != "" {
		return GitCommit
	}
	readBuild()
	if vcsCommit == "" {
		return "unknown"
	}
	commit := vcsCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if vcsDirty {
		commit += "-dirty"
	}
	return commit
}

// FullInfo returns the one-line version banner
func FullInfo() string {
	info := "sauco " + Version + " (commit: " + Commit()
	if BuildDate != "" {
		info += ", built: " + BuildDate
	}
	return info + ")"
}

// BuildID fingerprints the running binary from its Go version, module version and
// VCS settings. MCP clients see it in the server version, so a stale binary can be told apart.
func BuildID() string {
	readBuild()
	return buildID
}

func readBuild() {
	buildOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			buildID = fmt.Sprintf("%016x", xxhash.Sum64String(Version+GitCommit))
			return
		}

		h := xxhash.New()
		h.WriteString(info.GoVersion)
		h.WriteString(info.Main.Path)
		h.WriteString(info.Main.Version)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				vcsCommit = s.Value
			case "vcs.modified":
				vcsDirty = s.Value == "true"
			case "vcs.time":
			default:
				continue
			}
			h.WriteString(s.Key)
			h.WriteString(s.Value)
		}
		buildID = fmt.Sprintf("%016x", h.Sum64())
	})
}
