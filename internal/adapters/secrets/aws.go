package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"go.uber.org/zap"
)

// AWSConfig configures the AWS Secrets Manager provider.
type AWSConfig struct {
	Region string
	// Profile selects a shared-config profile for local development;
	// production relies on the default credentials chain (IAM role).
	Profile string
	// Endpoint overrides the service endpoint, for LocalStack.
	Endpoint string
	CacheTTL time.Duration
}

type awsProvider struct {
	client *secretsmanager.Client
	cache  *secretCache
	logger *zap.Logger
}

// NewAWSProvider creates a Secrets Manager backed provider.
func NewAWSProvider(ctx context.Context, cfg AWSConfig, logger *zap.Logger) (ports.SecretProvider, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("secrets manager provider initialized",
		zap.String("region", cfg.Region),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	return &awsProvider{
		client: secretsmanager.NewFromConfig(awsCfg, clientOpts...),
		cache:  newSecretCache(cfg.CacheTTL),
		logger: logger,
	}, nil
}

func (p *awsProvider) GetSecret(ctx context.Context, path string) (string, error) {
	if value, ok := p.cache.get(path); ok {
		return value, nil
	}

	result, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret %s: %w", path, err)
	}

	value := aws.ToString(result.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", path)
	}

	p.cache.set(path, value)
	p.logger.Debug("secret resolved", zap.String("path", path))
	return value, nil
}
