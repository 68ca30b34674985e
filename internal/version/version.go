package version

var (
	// Version is the current library version.
	// It should be populated by the build system (ldflags).
	Version = "v0.2.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// UserAgent is the default User-Agent sent to the vendor endpoint.
func UserAgent() string {
	return "golaundry/" + Version
}
