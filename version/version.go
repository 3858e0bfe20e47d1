package version

// These values are injected at build time using
// -ldflags "-X github.com/petjek/VolumiWLED/version.GitHash=... -X github.com/petjek/VolumiWLED/version.BuildTime=..."
var (
	GitHash   = "unknown"
	BuildTime = "unknown"
)
