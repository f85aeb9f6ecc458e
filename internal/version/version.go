package version

// Set at build time with -ldflags "-X github.com/keshon/dynacmd/internal/version.Version=...".
var (
	AppName = "dynacmd"
	Version = "dev"
)
