package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestGetVersionPrefersBuildFlags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := GetVersion(); got != "v1.2.3" {
		t.Errorf("GetVersion() = %q, want v1.2.3", got)
	}
	Version = "dev"
	if got := GetVersion(); got == "" || got == "dev" {
		t.Errorf("GetVersion() = %q for a dev build", got)
	}
}

func TestGetFullVersion(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{name: "version only", version: "v1.0.0", commit: "unknown", date: "unknown", want: "v1.0.0"},
		{name: "short commit ignored", version: "v1.0.0", commit: "abc", date: "unknown", want: "v1.0.0"},
		{name: "with commit", version: "v1.0.0", commit: "0123456789abcdef", date: "unknown", want: "v1.0.0 (0123456)"},
		{name: "with commit and date", version: "v1.0.0", commit: "0123456789abcdef", date: "2026-01-02", want: "v1.0.0 (0123456, built 2026-01-02)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, tt.commit, tt.date
			if got := GetFullVersion(); got != tt.want {
				t.Errorf("GetFullVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "dzip")
	out := buf.String()
	for _, want := range []string{"dzip version ", "Package: dendra-zip", "Commit: ", "Build Date: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
