package ports

import (
	"context"
	"net/url"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ResponseKind says what the initiate-phase response contains.
type ResponseKind string

const (
	// ResponseKindForm is an embedded 3-D Secure challenge form the
	// caller renders into the payer's browser.
	ResponseKindForm ResponseKind = "form"
	// ResponseKindRedirect is a full page the payer's browser should be
	// redirected through.
	ResponseKindRedirect ResponseKind = "redirect"
)

// InitiateRequest carries everything the gateway needs to start a
// 3-D Secure payment.
type InitiateRequest struct {
	Transaction *domain.Transaction
	Card        domain.CardArgs
	Amount      decimal.Decimal
	ClientIP    string
}

// InitiateResult is the outcome of a successful initiate call.
type InitiateResult struct {
	Kind ResponseKind
	// HTML is either the challenge form or the redirect page.
	HTML string
	// Secure3DHash is the hash embedded in the request; the caller saves
	// it on the transaction record for the callback phase.
	Secure3DHash string
}

// Notification is the flat payload the provider returns to the payer's
// browser after the 3-D Secure challenge.
type Notification struct {
	OrderID          string
	ClientID         string
	TxnAmount        string
	TxnCurrencyCode  string
	TxnType          string
	InstallmentCount string
	CustomerIP       string
	CustomerEmail    string
	ProvUserID       string
	UserID           string
	MerchantID       string
	// 3-D Secure authentication fields echoed by the card network.
	CAVV string
	ECI  string
	XID  string
	MD   string
	// Raw error text forwarded on failed challenges, when present.
	ErrorMessage string
}

// CallbackOutcome is the normalized result of a callback confirmation
// or status query.
type CallbackOutcome struct {
	Approved bool
	// Message is the provider's Message node, "Approved" on success.
	Message string
	// Reason carries the provider's error text for declines.
	Reason string
}

// CardPaymentGateway is the provider-facing capability the coordinator
// drives: initiate a 3-D Secure payment, confirm a browser callback,
// and query a transaction's status on demand.
type CardPaymentGateway interface {
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)
	ConfirmCallback(ctx context.Context, notification *Notification) (*CallbackOutcome, error)
	QueryStatus(ctx context.Context, tx *domain.Transaction) (*CallbackOutcome, error)
	// ParseNotification maps the flat provider redirect payload onto a
	// Notification. The payload arrives as GET query or POST form values.
	ParseNotification(values url.Values) (*Notification, error)
}
