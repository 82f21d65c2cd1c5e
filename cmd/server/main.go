package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecomkit/checkout-service/internal/adapters/garanti"
	"github.com/ecomkit/checkout-service/internal/adapters/notify"
	"github.com/ecomkit/checkout-service/internal/adapters/secrets"
	"github.com/ecomkit/checkout-service/internal/config"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"github.com/ecomkit/checkout-service/internal/handlers/checkout"
	"github.com/ecomkit/checkout-service/internal/handlers/shipments"
	"github.com/ecomkit/checkout-service/internal/services/payment"
	"github.com/ecomkit/checkout-service/internal/services/shipping"
	"github.com/ecomkit/checkout-service/internal/store"
	"github.com/ecomkit/checkout-service/pkg/observability"
	"github.com/ecomkit/checkout-service/pkg/security"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := security.NewLogger(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	if err := resolveGatewayCredentials(cfg, logger); err != nil {
		return fmt.Errorf("resolving gateway credentials: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewPaymentMetrics(registry)

	transactions := store.NewTransactionStore()
	orders := store.NewOrderStore()

	connector := garanti.NewConnector(garanti.Config{
		APIURL:       cfg.Gateway.APIURL,
		ProvisionURL: cfg.Gateway.ProvisionURL,
		TerminalID:   cfg.Gateway.TerminalID,
		MerchantID:   cfg.Gateway.MerchantID,
		ProvUser:     cfg.Gateway.ProvUser,
		ProvPassword: cfg.Gateway.ProvPassword,
		StoreKey:     cfg.Gateway.StoreKey,
		Mode:         cfg.Gateway.Mode,
		CompanyName:  cfg.Gateway.CompanyName,
		ReturnURL:    cfg.Gateway.ReturnURL,
		Timeout:      time.Duration(cfg.Gateway.Timeout) * time.Second,
		AuditLogging: cfg.Gateway.AuditLogging,
	}, metrics, logger)

	coordinator := payment.NewCoordinator(connector, transactions, orders, metrics, cfg.Payment.AmountPrecision, logger)

	// The label-provider registry is validated here, at startup; a
	// misconfigured carrier fails the boot instead of the first shipment.
	labelRegistry, err := shipping.NewRegistry()
	if err != nil {
		return fmt.Errorf("building label registry: %w", err)
	}
	notifier := notify.NewLogNotifier(logger)
	printer := notify.NewLogPrinter(logger)
	shippingService := shipping.NewService(labelRegistry, printer, notifier, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	checkoutHandler := checkout.NewHandler(coordinator, orders, logger)
	checkoutHandler.AppendRoutes(router)

	shipmentsHandler := shipments.NewHandler(shippingService, logger)
	shipmentsHandler.AppendRoutes(router)

	metricsServer := observability.StartMetricsServer(
		fmt.Sprintf(":%d", cfg.Server.MetricsPort), registry, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("metrics server shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}

// resolveGatewayCredentials fills the secret halves of the gateway
// configuration from the configured secrets backend. The env backend
// already validated them at load time.
func resolveGatewayCredentials(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Secrets.Backend == config.SecretsBackendEnv {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		provider ports.SecretProvider
		err      error
	)
	switch cfg.Secrets.Backend {
	case config.SecretsBackendAWS:
		provider, err = secrets.NewAWSProvider(ctx, secrets.AWSConfig{
			Region:   cfg.Secrets.AWSRegion,
			Profile:  cfg.Secrets.AWSProfile,
			Endpoint: cfg.Secrets.AWSEndpoint,
			CacheTTL: time.Duration(cfg.Secrets.CacheTTL) * time.Second,
		}, logger)
	case config.SecretsBackendVault:
		provider, err = secrets.NewVaultProvider(secrets.VaultConfig{
			Address:   cfg.Secrets.VaultAddress,
			Token:     cfg.Secrets.VaultToken,
			Namespace: cfg.Secrets.VaultNamespace,
			MountPath: cfg.Secrets.VaultMountPath,
			CacheTTL:  time.Duration(cfg.Secrets.CacheTTL) * time.Second,
		}, logger)
	default:
		return fmt.Errorf("unknown secrets backend %q", cfg.Secrets.Backend)
	}
	if err != nil {
		return err
	}

	creds, err := secrets.LoadGatewayCredentials(ctx, provider, cfg.Secrets.PathPrefix)
	if err != nil {
		return err
	}
	cfg.Gateway.ProvPassword = creds.ProvPassword
	cfg.Gateway.StoreKey = creds.StoreKey
	return cfg.Gateway.ValidateCredentials()
}
