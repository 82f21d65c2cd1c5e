package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionState represents the lifecycle state of a payment transaction.
// The connector never owns the durable record; it only drives these
// transitions on the external transaction row.
type TransactionState string

const (
	TransactionStateDraft     TransactionState = "draft"
	TransactionStatePending   TransactionState = "pending"
	TransactionStateDone      TransactionState = "done"
	TransactionStateError     TransactionState = "error"
	TransactionStateCancelled TransactionState = "cancel"
)

// IsTerminal reports whether the state can no longer transition.
// Terminal states are idempotency anchors: a repeated provider callback
// for a terminal transaction must not re-run the confirmation.
func (s TransactionState) IsTerminal() bool {
	return s == TransactionStateDone || s == TransactionStateError || s == TransactionStateCancelled
}

// Transaction is the external payment transaction record as seen by the
// connector. Durable bookkeeping lives in the host persistence layer.
type Transaction struct {
	// Reference is the full internal reference, e.g. "S00042-2".
	Reference    string
	OrderID      string
	OrderName    string
	Amount       decimal.Decimal
	Currency     string
	PartnerEmail string
	PartnerLang  string
	ClientIP     string
	State        TransactionState
	// StateMessage holds the provider-supplied reason for error/decline states.
	StateMessage string
	// Secure3DHash is the hash saved at initiate time; it is the only
	// durable marker of a pending 3-D Secure challenge.
	Secure3DHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProviderReference returns the reference the gateway accepts. Garanti
// rejects the suffixed internal format, so the reference is truncated
// at the first "-".
func (t *Transaction) ProviderReference() string {
	ref, _, _ := strings.Cut(t.Reference, "-")
	return ref
}

// FirstEmail returns the first address when the partner record holds a
// comma-separated list. Only the first one is sent to the gateway.
func (t *Transaction) FirstEmail() string {
	email, _, _ := strings.Cut(t.PartnerEmail, ",")
	return strings.TrimSpace(email)
}

// Lang returns the checkout page language for the partner: Turkish
// partners get "tr", everyone else "en".
func (t *Transaction) Lang() string {
	if t.PartnerLang == "tr" || t.PartnerLang == "tr_TR" {
		return "tr"
	}
	return "en"
}

// SetDone marks the transaction confirmed.
func (t *Transaction) SetDone(message string) {
	t.State = TransactionStateDone
	t.StateMessage = message
	t.UpdatedAt = time.Now()
}

// SetError marks the transaction failed with the given reason.
func (t *Transaction) SetError(message string) {
	t.State = TransactionStateError
	t.StateMessage = message
	t.UpdatedAt = time.Now()
}

// SetPending marks the transaction as waiting for the payer to complete
// the 3-D Secure challenge off-site.
func (t *Transaction) SetPending() {
	t.State = TransactionStatePending
	t.UpdatedAt = time.Now()
}
