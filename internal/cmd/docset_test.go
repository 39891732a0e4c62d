package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/overviewdocs/overview-cli/internal/config"
)

func seedProfile(t *testing.T, account config.Account) {
	t.Helper()
	if err := config.SaveProfile("default", account); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
}

func TestDocSetShow_EnvSource(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"docset"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(output, "Default document set: 123") {
		t.Errorf("output = %q, want default set shown", output)
	}
	if !strings.Contains(output, "OVERVIEW_DOCSET_ID") {
		t.Errorf("output = %q, want env source noted", output)
	}
}

func TestDocSetShow_None(t *testing.T) {
	withMockKeyring(t)
	seedProfile(t, config.Account{Server: "https://www.overviewdocs.com", APIToken: "tok12345"})

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"docset", "show"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(output, "No default document set") {
		t.Errorf("output = %q, want no-default message", output)
	}
}

func TestDocSetShow_JSON(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"docset", "show", "--json"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	payload := decodeJSONMap(t, output)
	if payload["document_set_id"] != float64(123) {
		t.Errorf("document_set_id = %v, want 123", payload["document_set_id"])
	}
	if payload["source"] != "env" {
		t.Errorf("source = %v, want env", payload["source"])
	}
}

func TestDocSetUse(t *testing.T) {
	withMockKeyring(t)
	seedProfile(t, config.Account{Server: "https://www.overviewdocs.com", APIToken: "tok12345"})

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"docset", "use", "77"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(output, "77") {
		t.Errorf("output = %q, want new default echoed", output)
	}

	account, err := config.LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount failed: %v", err)
	}
	if account.DocumentSetID != 77 {
		t.Errorf("stored docset = %d, want 77", account.DocumentSetID)
	}
}

func TestDocSetUse_URL(t *testing.T) {
	withMockKeyring(t)
	seedProfile(t, config.Account{Server: "https://www.overviewdocs.com", APIToken: "tok12345"})

	captureStdout(t, func() {
		err := Execute(context.Background(), []string{
			"docset", "use", "https://www.overviewdocs.com/documentsets/88",
		})
		if err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	account, err := config.LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount failed: %v", err)
	}
	if account.DocumentSetID != 88 {
		t.Errorf("stored docset = %d, want 88", account.DocumentSetID)
	}
}

func TestDocSetUse_InvalidID(t *testing.T) {
	withMockKeyring(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"docset", "use", "abc"})
	})
	if err == nil {
		t.Fatal("expected error for non-numeric ID")
	}
	if code := ExitCode(err); code != exitUsage {
		t.Errorf("exit code = %d, want %d", code, exitUsage)
	}
}

func TestDocSetClear(t *testing.T) {
	withMockKeyring(t)
	seedProfile(t, config.Account{
		Server:        "https://www.overviewdocs.com",
		APIToken:      "tok12345",
		DocumentSetID: 77,
	})

	captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"docset", "clear"}); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	account, err := config.LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount failed: %v", err)
	}
	if account.DocumentSetID != 0 {
		t.Errorf("stored docset = %d, want cleared", account.DocumentSetID)
	}
}
