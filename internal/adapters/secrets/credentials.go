package secrets

import (
	"context"
	"fmt"
	"path"

	"github.com/ecomkit/checkout-service/internal/domain/ports"
)

const (
	provPasswordSecret = "prov_password"
	storeKeySecret     = "store_key"
)

// GatewayCredentials are the secret halves of the merchant
// configuration. The non-secret identifiers (terminal, merchant,
// provisioning user) stay in plain config.
type GatewayCredentials struct {
	ProvPassword string
	StoreKey     string
}

// LoadGatewayCredentials resolves the merchant credentials under the
// given path prefix, e.g. "checkout-service/garanti".
func LoadGatewayCredentials(ctx context.Context, provider ports.SecretProvider, prefix string) (*GatewayCredentials, error) {
	provPassword, err := provider.GetSecret(ctx, path.Join(prefix, provPasswordSecret))
	if err != nil {
		return nil, fmt.Errorf("resolving provisioning password: %w", err)
	}
	storeKey, err := provider.GetSecret(ctx, path.Join(prefix, storeKeySecret))
	if err != nil {
		return nil, fmt.Errorf("resolving store key: %w", err)
	}
	return &GatewayCredentials{
		ProvPassword: provPassword,
		StoreKey:     storeKey,
	}, nil
}
