// Package payment orchestrates the three gateway phases (initiate,
// confirm-callback, query) and maps their outcomes onto the external
// transaction record lifecycle.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"github.com/ecomkit/checkout-service/pkg/observability"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Coordinator drives the payment protocol state machine:
// draft -> pending -> {done | error}. The pending phase is implicit
// while the payer completes the 3-D Secure challenge off-site; the
// transaction record plus its saved hash are the only durable markers.
type Coordinator struct {
	gateway      ports.CardPaymentGateway
	transactions ports.TransactionStore
	orders       ports.OrderStore
	metrics      *observability.PaymentMetrics
	logger       *zap.Logger
	// precision is the decimal precision for amount comparison.
	precision int32
}

// NewCoordinator creates a payment coordinator.
func NewCoordinator(
	gateway ports.CardPaymentGateway,
	transactions ports.TransactionStore,
	orders ports.OrderStore,
	metrics *observability.PaymentMetrics,
	precision int32,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		gateway:      gateway,
		transactions: transactions,
		orders:       orders,
		metrics:      metrics,
		precision:    precision,
		logger:       logger,
	}
}

// Gateway exposes the underlying gateway for notification parsing at
// the HTTP boundary.
func (c *Coordinator) Gateway() ports.CardPaymentGateway {
	return c.gateway
}

// InitiatePayment validates the checkout submission, creates a draft
// transaction and submits the signed initiation request. All validation
// happens before any network call.
func (c *Coordinator) InitiatePayment(ctx context.Context, orderID string, card domain.CardArgs, amount decimal.Decimal, clientIP string) (*ports.InitiateResult, *domain.Transaction, error) {
	order, err := c.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if err := card.Validate(); err != nil {
		return nil, nil, err
	}

	if !order.AmountMatches(amount, c.precision) {
		return nil, nil, domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid, "Invalid amount")
	}

	tx := &domain.Transaction{
		Reference:    order.Name + "-" + uuid.NewString()[:8],
		OrderID:      order.ID,
		OrderName:    order.Name,
		Amount:       order.PayableAmount,
		Currency:     order.Currency,
		PartnerEmail: order.PartnerEmail,
		PartnerLang:  order.PartnerLang,
		ClientIP:     clientIP,
		State:        domain.TransactionStateDraft,
		CreatedAt:    time.Now(),
	}
	if err := c.transactions.Create(ctx, tx); err != nil {
		return nil, nil, err
	}

	result, err := c.gateway.Initiate(ctx, &ports.InitiateRequest{
		Transaction: tx,
		Card:        card,
		Amount:      amount,
		ClientIP:    clientIP,
	})
	if err != nil {
		// The failure is surfaced to the caller instead of leaving the
		// draft silently dangling.
		c.recordFailure(ctx, tx, err)
		return nil, tx, err
	}

	tx.Secure3DHash = result.Secure3DHash
	tx.SetPending()
	if err := c.transactions.Update(ctx, tx); err != nil {
		return nil, tx, err
	}

	if c.metrics != nil {
		c.metrics.Initiated()
	}
	c.logger.Info("payment pending 3-D Secure challenge",
		zap.String("reference", tx.Reference),
		zap.String("kind", string(result.Kind)),
	)
	return result, tx, nil
}

// HandleCallback reconciles a provider redirect with the locally
// tracked transaction. Repeated callbacks for a terminal transaction
// are idempotent: the recorded outcome is returned without another
// provisioning call.
func (c *Coordinator) HandleCallback(ctx context.Context, notification *ports.Notification) (*domain.Transaction, error) {
	tx, err := c.transactions.GetByProviderReference(ctx, notification.OrderID)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrorCodeTxnNotFound, "Transaction not completed")
	}

	if tx.State.IsTerminal() {
		c.logger.Info("duplicate callback for terminal transaction",
			zap.String("reference", tx.Reference),
			zap.String("state", string(tx.State)),
		)
		return tx, nil
	}

	outcome, err := c.gateway.ConfirmCallback(ctx, notification)
	if err != nil {
		c.recordFailure(ctx, tx, err)
		return tx, err
	}

	if outcome.Approved {
		tx.SetDone(outcome.Message)
		if c.metrics != nil {
			c.metrics.Approved()
		}
	} else {
		tx.SetError(declineMessage(outcome))
		if c.metrics != nil {
			c.metrics.Declined()
		}
	}
	if err := c.transactions.Update(ctx, tx); err != nil {
		return tx, err
	}

	c.logger.Info("payment callback reconciled",
		zap.String("reference", tx.Reference),
		zap.String("state", string(tx.State)),
		zap.Bool("approved", outcome.Approved),
	)
	return tx, nil
}

// QueryStatus re-checks a transaction's status at the provider on
// demand. The transaction state is left untouched; a failed or
// malformed query must not disturb the record.
func (c *Coordinator) QueryStatus(ctx context.Context, providerRef string) (*ports.CallbackOutcome, error) {
	tx, err := c.transactions.GetByProviderReference(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	return c.gateway.QueryStatus(ctx, tx)
}

// recordFailure writes the payer-safe message onto the transaction and
// counts the failure. The original cause stays in the logs.
func (c *Coordinator) recordFailure(ctx context.Context, tx *domain.Transaction, cause error) {
	declined := false
	var domainErr *domain.DomainError
	if errors.As(cause, &domainErr) {
		tx.SetError(domainErr.UserMessage())
		declined = domainErr.Code == domain.ErrorCodeGatewayDeclined ||
			domainErr.Code == domain.ErrorCodeNotAuthenticated
	} else {
		tx.SetError(domain.GenericPaymentMessage)
	}
	if err := c.transactions.Update(ctx, tx); err != nil {
		c.logger.Error("updating failed transaction", zap.Error(err), zap.String("reference", tx.Reference))
	}
	if c.metrics != nil {
		if declined {
			c.metrics.Declined()
		} else {
			c.metrics.Errored()
		}
	}
	c.logger.Error("payment attempt failed",
		zap.Error(cause),
		zap.String("reference", tx.Reference),
	)
}

func declineMessage(outcome *ports.CallbackOutcome) string {
	if outcome.Reason != "" {
		return outcome.Reason
	}
	return "Payment Error: The payment was declined."
}
