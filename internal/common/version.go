package common

// Version information, overridden at build time via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
)

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

// GetGitCommit returns the git commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}
