package cmd

import (
	"context"
	"strings"
	"testing"
)

func TestVersion_Text(t *testing.T) {
	t.Setenv("OVERVIEW_OUTPUT", "text")

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(output, "overview-cli version dev") {
		t.Errorf("output = %q, want dev version", output)
	}
}

func TestVersion_JSON(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--json"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	payload := decodeJSONMap(t, output)
	if payload["version"] != "dev" {
		t.Errorf("version = %v, want dev", payload["version"])
	}
	if payload["go_version"] == "" {
		t.Error("go_version missing")
	}
}

func TestVersion_CheckUpdateSkippedForDev(t *testing.T) {
	// Dev builds never hit the release endpoint; stderr stays quiet.
	stderr := captureStderr(t, func() {
		captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"version", "--check-update"}); err != nil {
				t.Fatalf("command failed: %v", err)
			}
		})
	})

	if strings.Contains(stderr, "new release") {
		t.Errorf("stderr = %q, want no update notice for dev build", stderr)
	}
}
