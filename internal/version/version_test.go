package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored_KeepsSuffix(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "nightly"}
	for _, v := range tests {
		withVersion(t, v, "", "")
		if got := Colored(); got != v {
			t.Errorf("Colored() with color disabled = %q, want %q", got, v)
		}
	}
}

func TestSummary_OptionalFields(t *testing.T) {
	withVersion(t, "1.0.0", "", "")
	if got := Summary(false); got != "ownsim 1.0.0\n" {
		t.Fatalf("Summary = %q", got)
	}

	withVersion(t, "1.0.0", "abc123", "2026-01-15")
	got := Summary(false)
	for _, want := range []string{"commit: abc123", "built:  2026-01-15"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary missing %q:\n%s", want, got)
		}
	}
}
