// Package buildconfig carries release metadata stamped at link time via
// -ldflags "-X"; unstamped binaries report the dev defaults.
package buildconfig

var (
	version = "dev"
	commit  = "unknown"
)

// Version reports the stamped release version.
func Version() string {
	return version
}

// Commit reports the stamped git commit hash.
func Commit() string {
	return commit
}

// VersionInfo bundles the stamped values for the metrics endpoint.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
