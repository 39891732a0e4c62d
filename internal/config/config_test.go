package config

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

// mockKeyring is an in-memory keyring.Keyring for tests.
type mockKeyring struct {
	items map[string]keyring.Item
}

func newMockKeyring() *mockKeyring {
	return &mockKeyring{items: make(map[string]keyring.Item)}
}

func (m *mockKeyring) Get(key string) (keyring.Item, error) {
	item, ok := m.items[key]
	if !ok {
		return keyring.Item{}, keyring.ErrKeyNotFound
	}
	return item, nil
}

func (m *mockKeyring) GetMetadata(_ string) (keyring.Metadata, error) {
	return keyring.Metadata{}, nil
}

func (m *mockKeyring) Set(item keyring.Item) error {
	m.items[item.Key] = item
	return nil
}

func (m *mockKeyring) Remove(key string) error {
	if _, ok := m.items[key]; !ok {
		return keyring.ErrKeyNotFound
	}
	delete(m.items, key)
	return nil
}

func (m *mockKeyring) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys, nil
}

func withMockKeyring(t *testing.T) *mockKeyring {
	t.Helper()
	mock := newMockKeyring()
	restore := SetOpenKeyring(func(_ keyring.Config) (keyring.Keyring, error) {
		return mock, nil
	})
	t.Cleanup(restore)
	return mock
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OVERVIEW_SERVER", "")
	t.Setenv("OVERVIEW_API_TOKEN", "")
	t.Setenv("OVERVIEW_DOCSET_ID", "")
	t.Setenv("OVERVIEW_PROFILE", "")
}

func TestSaveAndLoadAccount(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	account := Account{
		Server:        "https://www.overviewdocs.com",
		APIToken:      "tok",
		DocumentSetID: 42,
	}
	if err := SaveAccount(account); err != nil {
		t.Fatalf("SaveAccount error: %v", err)
	}

	loaded, err := LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount error: %v", err)
	}
	if loaded != account {
		t.Errorf("LoadAccount = %+v, want %+v", loaded, account)
	}
}

func TestLoadAccount_NotConfigured(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	_, err := LoadAccount()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("LoadAccount = %v, want ErrNotConfigured", err)
	}
}

func TestLoadAccount_EnvOverride(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	t.Setenv("OVERVIEW_SERVER", "https://overview.example.com/")
	t.Setenv("OVERVIEW_API_TOKEN", "env-token")
	t.Setenv("OVERVIEW_DOCSET_ID", "7")

	account, err := LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount error: %v", err)
	}
	if account.Server != "https://overview.example.com" {
		t.Errorf("Server = %q, want trailing slash trimmed", account.Server)
	}
	if account.APIToken != "env-token" || account.DocumentSetID != 7 {
		t.Errorf("account = %+v", account)
	}
}

func TestLoadAccount_EnvMissingToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVERVIEW_SERVER", "https://overview.example.com")

	if _, err := LoadAccount(); err == nil {
		t.Fatal("Expected error when OVERVIEW_API_TOKEN missing")
	}
}

func TestLoadAccount_EnvBadDocsetID(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVERVIEW_SERVER", "https://overview.example.com")
	t.Setenv("OVERVIEW_API_TOKEN", "tok")
	t.Setenv("OVERVIEW_DOCSET_ID", "zero")

	if _, err := LoadAccount(); err == nil {
		t.Fatal("Expected error for non-numeric OVERVIEW_DOCSET_ID")
	}
}

func TestProfiles(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	if err := SaveProfile("work", Account{Server: "https://a.example.com", APIToken: "a"}); err != nil {
		t.Fatalf("SaveProfile error: %v", err)
	}
	if err := SaveProfile("home", Account{Server: "https://b.example.com", APIToken: "b"}); err != nil {
		t.Fatalf("SaveProfile error: %v", err)
	}

	// Last saved profile becomes current.
	current, err := CurrentProfile()
	if err != nil {
		t.Fatalf("CurrentProfile error: %v", err)
	}
	if current != "home" {
		t.Errorf("CurrentProfile = %q, want home", current)
	}

	profiles, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles error: %v", err)
	}
	if len(profiles) != 2 {
		t.Errorf("ListProfiles = %v", profiles)
	}

	// OVERVIEW_PROFILE selects a specific profile.
	t.Setenv("OVERVIEW_PROFILE", "work")
	account, err := LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount error: %v", err)
	}
	if account.Server != "https://a.example.com" {
		t.Errorf("Server = %q, want work profile", account.Server)
	}
}

func TestDeleteProfile(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	if err := SaveProfile("work", Account{Server: "https://a.example.com", APIToken: "a"}); err != nil {
		t.Fatalf("SaveProfile error: %v", err)
	}
	if err := DeleteProfile("work"); err != nil {
		t.Fatalf("DeleteProfile error: %v", err)
	}

	profiles, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles error: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("ListProfiles = %v, want empty", profiles)
	}

	// Current profile falls back to default.
	current, err := CurrentProfile()
	if err != nil {
		t.Fatalf("CurrentProfile error: %v", err)
	}
	if current != "default" {
		t.Errorf("CurrentProfile = %q, want default", current)
	}
}

func TestSetDefaultDocumentSet(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	if err := SaveAccount(Account{Server: "https://a.example.com", APIToken: "a"}); err != nil {
		t.Fatalf("SaveAccount error: %v", err)
	}
	if err := SetDefaultDocumentSet(99); err != nil {
		t.Fatalf("SetDefaultDocumentSet error: %v", err)
	}

	account, err := LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount error: %v", err)
	}
	if account.DocumentSetID != 99 {
		t.Errorf("DocumentSetID = %d, want 99", account.DocumentSetID)
	}
}

func TestResolveClientConfig_Overrides(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	if err := SaveAccount(Account{Server: "https://stored.example.com", APIToken: "stored", DocumentSetID: 3}); err != nil {
		t.Fatalf("SaveAccount error: %v", err)
	}

	cfg, err := ResolveClientConfig("https://flag.example.com/", "flag-token")
	if err != nil {
		t.Fatalf("ResolveClientConfig error: %v", err)
	}
	if cfg.Server != "https://flag.example.com" || cfg.Token != "flag-token" {
		t.Errorf("cfg = %+v, want flag overrides", cfg)
	}
	if cfg.DocumentSetID != 3 {
		t.Errorf("DocumentSetID = %d, want stored default", cfg.DocumentSetID)
	}
}

func TestResolveClientConfig_NotConfigured(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t)

	if _, err := ResolveClientConfig("", ""); err == nil {
		t.Fatal("Expected error when nothing configured")
	}
}

func TestShouldForceFileBackend(t *testing.T) {
	tests := []struct {
		goos     string
		backend  string
		dbusAddr string
		want     bool
	}{
		{"linux", "auto", "", true},
		{"linux", "auto", "unix:path=/run/user/1000/bus", false},
		{"darwin", "auto", "", false},
		{"darwin", "file", "", true},
		{"linux", "system", "", false},
	}
	for _, tt := range tests {
		got := shouldForceFileBackend(tt.goos, tt.backend, tt.dbusAddr)
		if got != tt.want {
			t.Errorf("shouldForceFileBackend(%q, %q, %q) = %t, want %t", tt.goos, tt.backend, tt.dbusAddr, got, tt.want)
		}
	}
}
