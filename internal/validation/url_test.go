package validation

import (
	"strings"
	"testing"
)

func TestValidateServerURL_Valid(t *testing.T) {
	urls := []string{
		"https://www.overviewdocs.com",
		"https://overview.example.com/path",
		"http://overview.example.com:9000",
	}
	for _, u := range urls {
		if err := ValidateServerURL(u); err != nil {
			t.Errorf("ValidateServerURL(%q) = %v, want nil", u, err)
		}
	}
}

func TestValidateServerURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty", "", "cannot be empty"},
		{"bad scheme", "ftp://example.com", "invalid URL scheme"},
		{"no host", "https://", "must contain a hostname"},
		{"localhost", "http://localhost:3000", "localhost"},
		{"loopback ip", "http://127.0.0.1", "localhost"},
		{"localhost subdomain", "http://dev.localhost", "localhost"},
		{"metadata", "http://169.254.169.254/latest", "metadata"},
		{"gcp metadata", "http://metadata.google.internal", "metadata"},
		{"private ip", "http://10.0.0.5", "private IP"},
		{"link local", "http://169.254.1.1", "link-local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerURL(tt.url)
			if err == nil {
				t.Fatalf("ValidateServerURL(%q) = nil, want error", tt.url)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestValidateServerURL_AllowPrivate(t *testing.T) {
	SetAllowPrivate(true)
	defer SetAllowPrivate(false)

	if !AllowPrivateEnabled() {
		t.Fatal("AllowPrivateEnabled should be true")
	}

	if err := ValidateServerURL("http://localhost:3000"); err != nil {
		t.Errorf("localhost should be allowed: %v", err)
	}
	if err := ValidateServerURL("http://10.0.0.5"); err != nil {
		t.Errorf("private IP should be allowed: %v", err)
	}

	// Metadata endpoints stay blocked.
	if err := ValidateServerURL("http://169.254.169.254"); err == nil {
		t.Error("cloud metadata should stay blocked")
	}
}
