package version

import (
	"runtime/debug"
	"testing"
)

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestFromBuildInfo_NoBuildInfo(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := fromBuildInfo(nil, false)
	if info.Version != "dev" || info.GitCommit != "" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.IsRelease() {
		t.Error("dev must not be a release")
	}
	if info.String() != "dev" {
		t.Errorf("expected 'dev', got %q", info.String())
	}
}

func TestFromBuildInfo_VCSFallback(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "1.2.0", "", ""

	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-01-15T10:30:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	info := fromBuildInfo(bi, true)

	if info.GitCommit != "0123456" {
		t.Errorf("expected truncated commit, got %q", info.GitCommit)
	}
	if info.GoVersion != "go1.24.0" {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
	if !info.Dirty || info.IsRelease() {
		t.Errorf("dirty build must not be a release: %+v", info)
	}
	if got, want := info.String(), "1.2.0-0123456-dirty (built 2025-01-15T10:30:00Z)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFromBuildInfo_LdflagsWin(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "2.0.0", "abc1234", "2025-02-01T00:00:00Z"

	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "fffffffffff"},
		{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
	}}
	info := fromBuildInfo(bi, true)

	if info.GitCommit != "abc1234" || info.BuildTime != "2025-02-01T00:00:00Z" {
		t.Fatalf("ldflags values must take precedence: %+v", info)
	}
	if !info.IsRelease() {
		t.Error("expected release")
	}
	if info.Short() != "2.0.0-abc1234" {
		t.Errorf("unexpected short %q", info.Short())
	}
}
