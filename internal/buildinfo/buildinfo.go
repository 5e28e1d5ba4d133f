// Package buildinfo reports the fragfusion build. Release builds set the
// variables with
//
//	-ldflags "-X github.com/dhruv-ramu/FragmentFusion/internal/buildinfo.Version=v0.3.0 ..."
//
// Other builds fall back to the module version and VCS stamp recorded by the
// Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build description.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get resolves Info from the link-time variables, then from debug.BuildInfo.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("fragfusion %s (commit=%s, date=%s)", i.Version, i.Commit, i.Date)
}
