package internal

import (
	"runtime/debug"
	"time"
)

// Build information, read from the version control stamps that the Go
// toolchain embeds in the binary. Binaries built outside of a repository
// keep the defaults.
var (
	BuildRevision      = "unknown"
	BuildRevisionTime  time.Time
	BuildLocalModified bool
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			BuildRevision = setting.Value
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, setting.Value)
			if err == nil {
				BuildRevisionTime = t
			}
		case "vcs.modified":
			BuildLocalModified = setting.Value == "true"
		}
	}
}

// Version is the short revision of the build, suffixed with "-dirty" when
// the binary was built from a modified working tree. It's used in asset URLs
// and stored with database migrations.
func Version() string {
	return version(BuildRevision, BuildLocalModified)
}

func version(revision string, modified bool) string {
	const shortLen = 12
	if len(revision) > shortLen {
		revision = revision[:shortLen]
	}

	if modified {
		return revision + "-dirty"
	}
	return revision
}
