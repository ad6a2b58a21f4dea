package main

import (
	"encoding/json"
	"runtime"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	resetFlags()

	output, err := captureOutput(t, func() error {
		return runVersion(nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, output, []string{"poolctl " + version, "commit: " + commit, "go: " + runtime.Version()})

	if rootCmd.Version != version {
		t.Errorf("--version reports %q, version command reports %q", rootCmd.Version, version)
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runVersion(nil)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertJSON(t, output)

	var info versionInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != version || info.Go != runtime.Version() {
		t.Errorf("unexpected version info: %+v", info)
	}
}
