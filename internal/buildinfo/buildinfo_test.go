package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestRead(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.25.0",
			Main:      debug.Module{Version: "v1.2.3"},
			Settings: []debug.BuildSetting{
				{Key: "-tags", Value: "netgo"},
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			},
		}, true
	}
	info := Read()
	if info.Version != "v1.2.3" || info.Tags != "netgo" || info.GoVersion != "go1.25.0" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := info.String(); got != "v1.2.3 (rev: 0123456789ab, tags: netgo)" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestReadDevel(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	if got := Read().String(); got != "dev" {
		t.Fatalf("expected dev, got %q", got)
	}

	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	if got := Read(); got.Version != "dev" {
		t.Fatalf("expected dev, got %+v", got)
	}
}
