package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata for the ownsim CLI, overridable with
// -ldflags "-X ownsim/internal/version.Version=...".
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component highlighted.
// Anything after the patch number (a pre-release tag) stays plain.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." +
		minorColor.Sprint(parts[1]) + "." +
		patchColor.Sprint(parts[2]) + suffix
}

// Summary is the multi-line text printed by `ownsim version`.
func Summary(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	var sb strings.Builder
	sb.WriteString("ownsim " + v + "\n")
	if GitCommit != "" {
		sb.WriteString("commit: " + GitCommit + "\n")
	}
	if BuildDate != "" {
		sb.WriteString("built:  " + BuildDate + "\n")
	}
	return sb.String()
}
