package cmd

import (
	"fmt"
	"time"

	"github.com/overviewdocs/overview-cli/internal/api"
	"github.com/overviewdocs/overview-cli/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("overview-cli/%s", version),
	}
}

func (f *clientFactory) client() (*api.Client, error) {
	cfg, err := config.ResolveClientConfig("", "")
	if err != nil {
		return nil, err
	}
	return f.newClient(cfg), nil
}

func (f *clientFactory) newClient(cfg config.ClientConfig) *api.Client {
	exec := api.NewHTTPExecutor(f.timeout)
	exec.UserAgent = f.userAgent
	return api.New(cfg.Server, cfg.Token, api.WithExecutor(exec))
}
