package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain/ports"
	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultConfig configures the HashiCorp Vault provider. Only token auth
// is supported; the KV v2 engine is assumed.
type VaultConfig struct {
	Address string
	Token   string
	// Namespace for Vault Enterprise; empty otherwise.
	Namespace string
	// MountPath is the KV engine mount, default "secret".
	MountPath string
	CacheTTL  time.Duration
}

type vaultProvider struct {
	client    *vault.Client
	mountPath string
	cache     *secretCache
	logger    *zap.Logger
}

// NewVaultProvider creates a Vault backed provider.
func NewVaultProvider(cfg VaultConfig, logger *zap.Logger) (ports.SecretProvider, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	mountPath := cfg.MountPath
	if mountPath == "" {
		mountPath = "secret"
	}

	logger.Info("vault provider initialized",
		zap.String("address", cfg.Address),
		zap.String("mount_path", mountPath),
	)

	return &vaultProvider{
		client:    client,
		mountPath: mountPath,
		cache:     newSecretCache(cfg.CacheTTL),
		logger:    logger,
	}, nil
}

func (p *vaultProvider) GetSecret(ctx context.Context, path string) (string, error) {
	if value, ok := p.cache.get(path); ok {
		return value, nil
	}

	secret, err := p.client.KVv2(p.mountPath).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("reading vault secret %s: %w", path, err)
	}

	raw, ok := secret.Data["value"]
	if !ok {
		return "", fmt.Errorf("vault secret %s has no \"value\" field", path)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("vault secret %s is not a non-empty string", path)
	}

	p.cache.set(path, value)
	p.logger.Debug("secret resolved", zap.String("path", path))
	return value, nil
}
