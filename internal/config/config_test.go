package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GARANTI_TERMINAL_ID", "30691297")
	t.Setenv("GARANTI_MERCHANT_ID", "7000679")
	t.Setenv("GARANTI_PROV_USER", "PROVAUT")
	t.Setenv("GARANTI_PROV_PASSWORD", "123qweASD/")
	t.Setenv("GARANTI_STORE_KEY", "12345678")
	t.Setenv("GARANTI_RETURN_URL", "https://shop.example.com/payment/garanti/return")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "https://sanalposprovtest.garantibbva.com.tr/servlet/gt3dengine", cfg.Gateway.APIURL)
	assert.Equal(t, "https://sanalposprovtest.garantibbva.com.tr/VPServlet", cfg.Gateway.ProvisionURL)
	assert.Equal(t, "TEST", cfg.Gateway.Mode)
	assert.Equal(t, 10, cfg.Gateway.Timeout)
	assert.False(t, cfg.Gateway.AuditLogging)
	assert.Equal(t, int32(2), cfg.Payment.AmountPrecision)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("GARANTI_MODE", "PROD")
	t.Setenv("GARANTI_TIMEOUT", "30")
	t.Setenv("GARANTI_AUDIT_LOGGING", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "PROD", cfg.Gateway.Mode)
	assert.Equal(t, 30, cfg.Gateway.Timeout)
	assert.True(t, cfg.Gateway.AuditLogging)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadFromEnv_MissingCredentials(t *testing.T) {
	required := map[string]string{
		"GARANTI_TERMINAL_ID":   "GARANTI_TERMINAL_ID",
		"GARANTI_MERCHANT_ID":   "GARANTI_MERCHANT_ID",
		"GARANTI_PROV_USER":     "GARANTI_PROV_USER",
		"GARANTI_RETURN_URL":    "GARANTI_RETURN_URL",
		"GARANTI_PROV_PASSWORD": "provisioning password",
		"GARANTI_STORE_KEY":     "store key",
	}

	for missing, wantMessage := range required {
		t.Run(missing, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(missing, "")

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), wantMessage)
		})
	}
}

func TestLoadFromEnv_SecretsBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GARANTI_PROV_PASSWORD", "")
	t.Setenv("GARANTI_STORE_KEY", "")
	t.Setenv("SECRETS_BACKEND", "aws")
	t.Setenv("AWS_REGION", "us-east-1")

	// With a secrets backend the credential env vars may be absent;
	// they are resolved after load.
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, SecretsBackendAWS, cfg.Secrets.Backend)
	assert.Equal(t, "us-east-1", cfg.Secrets.AWSRegion)
	assert.Equal(t, "checkout-service/garanti", cfg.Secrets.PathPrefix)

	assert.Error(t, cfg.Gateway.ValidateCredentials())
	cfg.Gateway.ProvPassword = "123qweASD/"
	cfg.Gateway.StoreKey = "12345678"
	assert.NoError(t, cfg.Gateway.ValidateCredentials())
}

func TestLoadFromEnv_UnknownSecretsBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SECRETS_BACKEND", "gcp")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRETS_BACKEND")
}

func TestGetEnvAsInt_BadValueFallsBack(t *testing.T) {
	t.Setenv("GARANTI_TIMEOUT", "not-a-number")
	assert.Equal(t, 10, getEnvAsInt("GARANTI_TIMEOUT", 10))
}
