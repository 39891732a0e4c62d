package config

import (
	"fmt"
	"os"
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Server        string
	Token         string
	DocumentSetID int64
}

// ResolveClientConfig resolves client settings from flags, environment,
// and the stored profile, in that order of precedence.
func ResolveClientConfig(serverOverride, tokenOverride string) (ClientConfig, error) {
	var cfg ClientConfig

	account, err := LoadAccount()
	if err == nil {
		cfg.Server = account.Server
		cfg.Token = account.APIToken
		cfg.DocumentSetID = account.DocumentSetID
	}

	if envURL := strings.TrimSpace(os.Getenv("OVERVIEW_SERVER")); envURL != "" {
		cfg.Server = strings.TrimSuffix(envURL, "/")
	}
	if envToken := strings.TrimSpace(os.Getenv("OVERVIEW_API_TOKEN")); envToken != "" {
		cfg.Token = envToken
	}

	if serverOverride != "" {
		cfg.Server = strings.TrimSuffix(serverOverride, "/")
	}
	if tokenOverride != "" {
		cfg.Token = tokenOverride
	}

	if cfg.Server == "" || cfg.Token == "" {
		if err != nil {
			return ClientConfig{}, err
		}
		return ClientConfig{}, fmt.Errorf("server or token not configured (run 'ov auth login' or set OVERVIEW_SERVER and OVERVIEW_API_TOKEN)")
	}

	return cfg, nil
}
