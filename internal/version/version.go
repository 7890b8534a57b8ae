package version

// Version is the prerender release, set at link time:
// go build -ldflags "-X git.home.luguber.info/inful/prerender/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata, also injected through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version line printed by `prerender --version`.
func String() string {
	return "prerender " + Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
