package plaid

import (
	"fmt"
	"net/http"

	"finsight/internal/config"
	"finsight/internal/models"

	plaidsdk "github.com/plaid/plaid-go/v29/plaid"
)

// Clients maps an item environment to the feed client serving it.
type Clients map[models.ItemEnvironment]FeedClient

// NewClients builds one client per configured Plaid deployment. Deployments
// without a secret are left out. An empty URL selects Plaid's public host.
func NewClients(cfg *config.Config, httpClient *http.Client) Clients {
	clients := Clients{}
	if cfg.PlaidSecretProduction != "" {
		clients[models.ItemEnvironmentProduction] = NewClient(orDefault(cfg.PlaidProductionURL, plaidsdk.Production), cfg.PlaidClientID, cfg.PlaidSecretProduction, httpClient)
	}
	if cfg.PlaidSecretSandbox != "" {
		clients[models.ItemEnvironmentSandbox] = NewClient(orDefault(cfg.PlaidSandboxURL, plaidsdk.Sandbox), cfg.PlaidClientID, cfg.PlaidSecretSandbox, httpClient)
	}
	return clients
}

// For returns the client for env.
func (c Clients) For(env models.ItemEnvironment) (FeedClient, error) {
	client, ok := c[env]
	if !ok || client == nil {
		return nil, fmt.Errorf("no feed client configured for environment %q", env)
	}
	return client, nil
}

func orDefault(url string, env plaidsdk.Environment) string {
	if url == "" {
		return string(env)
	}
	return url
}
