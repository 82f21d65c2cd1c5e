package config

import (
	"fmt"
	"os"
	"strconv"
)

// Secrets backends for the merchant credentials.
const (
	SecretsBackendEnv   = "env"
	SecretsBackendAWS   = "aws"
	SecretsBackendVault = "vault"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Payment PaymentConfig
	Secrets SecretsConfig
	Logger  LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int
}

// GatewayConfig holds the Garanti virtual POS credentials and endpoints
type GatewayConfig struct {
	// APIURL is the payment-submission endpoint (form-encoded POST).
	APIURL string
	// ProvisionURL is the XML provisioning endpoint used for callback
	// confirmation and status queries.
	ProvisionURL string
	TerminalID   string
	MerchantID   string
	ProvUser     string
	ProvPassword string
	StoreKey     string
	// Mode is TEST or PROD, forwarded verbatim to the gateway.
	Mode        string
	CompanyName string
	// ReturnURL is where the gateway redirects the payer after the
	// 3-D Secure challenge.
	ReturnURL string
	// Timeout is the outbound request timeout in seconds.
	Timeout int
	// AuditLogging enables redacted request/response logging.
	AuditLogging bool
}

// SecretsConfig selects where the merchant credentials come from.
// With the "env" backend the provisioning password and store key are
// read straight from the environment; "aws" and "vault" resolve them
// from the respective secrets backend at startup.
type SecretsConfig struct {
	Backend string
	// PathPrefix is prepended to the individual secret names,
	// e.g. "checkout-service/garanti".
	PathPrefix string
	// CacheTTL is the provider cache lifetime in seconds.
	CacheTTL int

	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	VaultAddress   string
	VaultToken     string
	VaultNamespace string
	VaultMountPath string
}

// PaymentConfig holds checkout validation settings
type PaymentConfig struct {
	// AmountPrecision is the decimal precision for amount comparison.
	AmountPrecision int32
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Gateway: GatewayConfig{
			APIURL:       getEnv("GARANTI_API_URL", "https://sanalposprovtest.garantibbva.com.tr/servlet/gt3dengine"),
			ProvisionURL: getEnv("GARANTI_PROV_URL", "https://sanalposprovtest.garantibbva.com.tr/VPServlet"),
			TerminalID:   getEnv("GARANTI_TERMINAL_ID", ""),
			MerchantID:   getEnv("GARANTI_MERCHANT_ID", ""),
			ProvUser:     getEnv("GARANTI_PROV_USER", ""),
			ProvPassword: getEnv("GARANTI_PROV_PASSWORD", ""),
			StoreKey:     getEnv("GARANTI_STORE_KEY", ""),
			Mode:         getEnv("GARANTI_MODE", "TEST"),
			CompanyName:  getEnv("GARANTI_COMPANY_NAME", ""),
			ReturnURL:    getEnv("GARANTI_RETURN_URL", ""),
			Timeout:      getEnvAsInt("GARANTI_TIMEOUT", 10),
			AuditLogging: getEnvAsBool("GARANTI_AUDIT_LOGGING", false),
		},
		Payment: PaymentConfig{
			AmountPrecision: int32(getEnvAsInt("AMOUNT_PRECISION", 2)),
		},
		Secrets: SecretsConfig{
			Backend:        getEnv("SECRETS_BACKEND", SecretsBackendEnv),
			PathPrefix:     getEnv("SECRETS_PATH_PREFIX", "checkout-service/garanti"),
			CacheTTL:       getEnvAsInt("SECRETS_CACHE_TTL", 300),
			AWSRegion:      getEnv("AWS_REGION", "eu-central-1"),
			AWSProfile:     getEnv("AWS_PROFILE", ""),
			AWSEndpoint:    getEnv("AWS_ENDPOINT_URL", ""),
			VaultAddress:   getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultNamespace: getEnv("VAULT_NAMESPACE", ""),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Missing identifiers would otherwise surface as silently wrong
	// security hashes, so they are rejected at startup.
	if cfg.Gateway.TerminalID == "" {
		return nil, fmt.Errorf("GARANTI_TERMINAL_ID is required")
	}
	if cfg.Gateway.MerchantID == "" {
		return nil, fmt.Errorf("GARANTI_MERCHANT_ID is required")
	}
	if cfg.Gateway.ProvUser == "" {
		return nil, fmt.Errorf("GARANTI_PROV_USER is required")
	}
	if cfg.Gateway.ReturnURL == "" {
		return nil, fmt.Errorf("GARANTI_RETURN_URL is required")
	}

	switch cfg.Secrets.Backend {
	case SecretsBackendEnv:
		// Credentials come straight from the environment, so they must
		// be present already.
		if err := cfg.Gateway.ValidateCredentials(); err != nil {
			return nil, err
		}
	case SecretsBackendAWS, SecretsBackendVault:
		// Credentials are resolved from the backend after load; the
		// caller re-validates once resolution is done.
	default:
		return nil, fmt.Errorf("unknown SECRETS_BACKEND %q", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// ValidateCredentials checks that the secret halves of the merchant
// configuration are present. Called at load time for the env backend
// and after secret resolution otherwise.
func (g *GatewayConfig) ValidateCredentials() error {
	if g.ProvPassword == "" {
		return fmt.Errorf("gateway provisioning password is required")
	}
	if g.StoreKey == "" {
		return fmt.Errorf("gateway store key is required")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
