package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func withReleasesURL(t *testing.T, url string) {
	t.Helper()
	original := GitHubReleasesURL
	GitHubReleasesURL = url
	t.Cleanup(func() { GitHubReleasesURL = original })
}

func TestCheckForUpdate_NewerAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name": "v2.0.0", "html_url": "https://example.com/release"}`))
	}))
	defer server.Close()
	withReleasesURL(t, server.URL)

	result := CheckForUpdate(context.Background(), "1.0.0")
	if result == nil {
		t.Fatal("expected a result")
	}
	if !result.UpdateAvailable {
		t.Error("expected update available")
	}
	if result.LatestVersion != "2.0.0" {
		t.Errorf("LatestVersion = %q", result.LatestVersion)
	}
	if result.UpdateURL != "https://example.com/release" {
		t.Errorf("UpdateURL = %q", result.UpdateURL)
	}
}

func TestCheckForUpdate_UpToDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v1.0.0"}`))
	}))
	defer server.Close()
	withReleasesURL(t, server.URL)

	result := CheckForUpdate(context.Background(), "1.0.0")
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.UpdateAvailable {
		t.Error("expected no update available")
	}
}

func TestCheckForUpdate_DevVersionSkipped(t *testing.T) {
	if CheckForUpdate(context.Background(), "dev") != nil {
		t.Error("dev builds should skip the check")
	}
	if CheckForUpdate(context.Background(), "") != nil {
		t.Error("empty version should skip the check")
	}
}

func TestCheckForUpdate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	withReleasesURL(t, server.URL)

	if CheckForUpdate(context.Background(), "1.0.0") != nil {
		t.Error("failed check should return nil")
	}
}

func TestNormalizeVersion(t *testing.T) {
	if normalizeVersion("1.2.3") != "v1.2.3" {
		t.Error("missing v prefix should be added")
	}
	if normalizeVersion("v1.2.3") != "v1.2.3" {
		t.Error("existing v prefix should be kept")
	}
}
