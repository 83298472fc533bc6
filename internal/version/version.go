package version

// Version information for the dada CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// VersionString renders the one-line fingerprint cobra's --version flag prints.
func VersionString() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if GitCommit == "" {
		return v
	}
	return v + " (" + GitCommit + ")"
}
