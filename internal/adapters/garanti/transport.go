package garanti

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain"
	pkghttp "github.com/ecomkit/checkout-service/pkg/http"
	"github.com/ecomkit/checkout-service/pkg/security"
	"go.uber.org/zap"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeXML  = "application/xml; charset=utf-8"
)

// Transport performs the outbound gateway calls. Every Send opens a
// fresh one-shot session so nothing leaks between unrelated payment
// attempts.
type Transport struct {
	timeout time.Duration
	audit   bool
	logger  *zap.Logger
	// newClient builds the per-call HTTP client; swapped in tests.
	newClient func(timeout time.Duration) *http.Client
}

// NewTransport creates a transport with the given per-request timeout.
func NewTransport(timeout time.Duration, audit bool, logger *zap.Logger) *Transport {
	return &Transport{
		timeout: timeout,
		audit:   audit,
		logger:  logger,
		newClient: func(timeout time.Duration) *http.Client {
			return pkghttp.NewClient(pkghttp.GatewayClientConfig(), timeout)
		},
	}
}

// Send posts the body to the gateway and returns the raw response. A
// connection failure, timeout or non-2xx status becomes a TransportError.
func (t *Transport) Send(ctx context.Context, method, endpoint string, body []byte, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeTransport, "building gateway request", err)
	}
	req.Header.Set("Content-Type", contentType)

	t.auditRequest(method, endpoint, body)

	client := t.newClient(t.timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeTransport, "gateway request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeTransport, "reading gateway response", err)
	}

	t.auditResponse(resp.StatusCode, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewDomainError(domain.ErrorCodeTransport,
			fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	return respBody, nil
}

// auditRequest logs the outbound payload at debug level. Redaction runs
// unconditionally before the payload can reach any sink, even when
// audit logging is off.
func (t *Transport) auditRequest(method, endpoint string, body []byte) {
	redacted := security.RedactPAN(string(body))
	if !t.audit {
		return
	}
	t.logger.Debug("gateway request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.String("body", redacted),
	)
}

func (t *Transport) auditResponse(status int, body []byte) {
	redacted := security.RedactPAN(string(body))
	if !t.audit {
		return
	}
	t.logger.Debug("gateway response",
		zap.Int("status", status),
		zap.String("body", redacted),
	)
}
