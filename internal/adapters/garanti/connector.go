package garanti

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"github.com/ecomkit/checkout-service/pkg/observability"
	"go.uber.org/zap"
)

// Config holds the gateway endpoints and merchant credentials.
type Config struct {
	// APIURL is the payment-submission endpoint (form-encoded POST).
	APIURL string
	// ProvisionURL is the XML endpoint for callback confirmation and
	// status queries.
	ProvisionURL string
	TerminalID   string
	MerchantID   string
	ProvUser     string
	ProvPassword string
	StoreKey     string
	Mode         string
	CompanyName  string
	ReturnURL    string
	Timeout      time.Duration
	AuditLogging bool
}

// Connector implements ports.CardPaymentGateway against the Garanti
// virtual POS. It holds no per-transaction state; each call is an
// independent request-scoped exchange.
type Connector struct {
	cfg     Config
	builder *RequestBuilder
	client  *Transport
	metrics *observability.PaymentMetrics
	logger  *zap.Logger
}

// NewConnector creates a gateway connector.
func NewConnector(cfg Config, metrics *observability.PaymentMetrics, logger *zap.Logger) *Connector {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Connector{
		cfg:     cfg,
		builder: NewRequestBuilder(cfg),
		client:  NewTransport(cfg.Timeout, cfg.AuditLogging, logger),
		metrics: metrics,
		logger:  logger,
	}
}

// Initiate submits the signed payment-initiation request and parses the
// HTML response into a challenge form or redirect page.
func (c *Connector) Initiate(ctx context.Context, req *ports.InitiateRequest) (*ports.InitiateResult, error) {
	vals, hash, err := c.builder.BuildInitiateVals(req.Transaction, req.Card, req.Amount, req.ClientIP)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.client.Send(ctx, http.MethodPost, c.cfg.APIURL, []byte(vals.Encode()), contentTypeForm)
	c.observe("initiate", start)
	if err != nil {
		return nil, err
	}

	result, err := ParseInitiateHTML(body)
	if err != nil {
		return nil, err
	}
	result.Secure3DHash = hash

	c.logger.Info("payment initiated",
		zap.String("order_ref", req.Transaction.ProviderReference()),
		zap.String("kind", string(result.Kind)),
	)
	return result, nil
}

// ConfirmCallback posts the callback-confirmation XML built from the
// notification data and parses the approval outcome.
func (c *Connector) ConfirmCallback(ctx context.Context, notification *ports.Notification) (*ports.CallbackOutcome, error) {
	xmlBody, err := c.builder.BuildCallbackXML(notification)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.client.Send(ctx, http.MethodPost, c.cfg.ProvisionURL, xmlBody, contentTypeXML)
	c.observe("callback", start)
	if err != nil {
		return nil, err
	}

	return ParseCallbackXML(body)
}

// QueryStatus re-checks a transaction's status out of band using the
// orderhistoryinq provisioning request.
func (c *Connector) QueryStatus(ctx context.Context, tx *domain.Transaction) (*ports.CallbackOutcome, error) {
	xmlBody, err := c.builder.BuildQueryXML(tx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.client.Send(ctx, http.MethodPost, c.cfg.ProvisionURL, xmlBody, contentTypeXML)
	c.observe("query", start)
	if err != nil {
		return nil, err
	}

	return ParseQueryXML(body)
}

// ParseNotification maps the flat redirect payload onto a Notification.
func (c *Connector) ParseNotification(values url.Values) (*ports.Notification, error) {
	return c.builder.ParseNotification(values)
}

func (c *Connector) observe(phase string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveGatewayCall(phase, start)
	}
}
