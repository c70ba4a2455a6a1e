package cmd

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// shortSHA is the number of commit hash characters shown in versions.
const shortSHA = 7

// BuildInfo is injected by the build pipeline.
type BuildInfo struct {
	Version   string
	CommitSHA string
}

func short(sha string) string {
	if len(sha) < shortSHA {
		return ""
	}
	return sha[:shortSHA]
}

// versionTemplate is the cobra version template: name, version, short
// commit, Go version and platform.
func versionTemplate(b BuildInfo) string {
	parts := []string{"{{.Name}}", "{{.Version}}"}
	if sha := short(b.CommitSHA); sha != "" {
		parts = append(parts, "("+sha+")")
	}
	parts = append(parts, runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH)
	return strings.Join(parts, " ") + "\n"
}

// normalizeBuildInfo fills what the linker flags left empty from the module
// and VCS data embedded by the go tool.
func normalizeBuildInfo(b BuildInfo) BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		if b.Version == "" {
			b.Version = "unknown"
		}
		return b
	}

	vcs := map[string]string{}
	for _, s := range info.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			vcs[s.Key] = s.Value
		}
	}
	if b.CommitSHA == "" {
		b.CommitSHA = vcs["vcs.revision"]
	}
	if b.Version == "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	if b.Version != "" {
		return b
	}

	version := []string{"dev"}
	if sha := short(vcs["vcs.revision"]); sha != "" {
		version = append(version, sha)
	}
	if vcs["vcs.modified"] == "true" {
		version = append(version, "dirty")
	}
	b.Version = strings.Join(version, "-")
	return b
}
