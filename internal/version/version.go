package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/vigil-dev/vigil/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/vigil-dev/vigil/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/vigil-dev/vigil/internal/version.Date={{.Date}}
)
