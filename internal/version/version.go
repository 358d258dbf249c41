// Package version exposes the heavy release string.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the embedded release version. When the VERSION file is empty
// it falls back to the module version recorded in the build info.
func Get() string {
	if v := strings.TrimSpace(versionContent); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return strings.TrimPrefix(info.Main.Version, "v")
	}
	return "dev"
}

// UserAgent returns the identifier sent with outbound HTTP requests.
func UserAgent() string {
	return "Mozilla/5.0 (compatible; heavy/" + Get() + ")"
}
