package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Build metadata, set with
// -ldflags "-X github.com/bobmcallan/folio/internal/common.Version=..."
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo is what /api/version, the server banner and `folio version` report.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", b.Version, b.Build, b.Commit)
}

// CurrentBuild returns the linked build metadata. Without a linked commit it
// falls back to the VCS revision stamped by the Go toolchain.
func CurrentBuild() BuildInfo {
	info := BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
	if info.Commit != "unknown" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		}
	}
	return info
}

// LoadVersionFile fills build fields still at their defaults from a
// ".version" file in dir ("key: value" lines). An empty dir means the
// directory of the running binary. A missing file is ignored.
func LoadVersionFile(dir string) {
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return
		}
		dir = filepath.Dir(exe)
	}
	f, err := os.Open(filepath.Join(dir, ".version"))
	if err != nil {
		return
	}
	defer f.Close()
	readVersionFile(f)
}

func readVersionFile(r io.Reader) {
	fields := map[string]*string{"version": &Version, "build": &Build, "commit": &GitCommit}
	defaults := map[string]string{"version": "dev", "build": "unknown", "commit": "unknown"}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, val, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || strings.HasPrefix(key, "#") {
			continue
		}
		key = strings.TrimSpace(key)
		if dst, known := fields[key]; known && *dst == defaults[key] {
			*dst = strings.TrimSpace(val)
		}
	}
}
