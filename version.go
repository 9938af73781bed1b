package pagetlai

// Build metadata for pagetlai. Override at build time with ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/pagetlai.GitCommit=$(git rev-parse HEAD)"
const (
	Name        = "pagetlai"
	Description = "Machine translation of multilingual page trees"

	// Version is the semantic version of the module.
	Version = "0.2.0"

	Repository = "https://github.com/ZaguanLabs/pagetlai"
)

// Set via ldflags during release builds.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version with the short commit hash appended when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the user agent sent by HTTP backends.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
