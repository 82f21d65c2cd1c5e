package payment

import (
	"context"
	"net/url"
	"testing"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"github.com/ecomkit/checkout-service/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGateway is a scriptable CardPaymentGateway recording call counts.
type fakeGateway struct {
	initiateResult  *ports.InitiateResult
	initiateErr     error
	callbackOutcome *ports.CallbackOutcome
	callbackErr     error
	queryOutcome    *ports.CallbackOutcome
	queryErr        error

	initiateCalls int
	confirmCalls  int
	queryCalls    int
}

func (f *fakeGateway) Initiate(ctx context.Context, req *ports.InitiateRequest) (*ports.InitiateResult, error) {
	f.initiateCalls++
	if f.initiateErr != nil {
		return nil, f.initiateErr
	}
	return f.initiateResult, nil
}

func (f *fakeGateway) ConfirmCallback(ctx context.Context, n *ports.Notification) (*ports.CallbackOutcome, error) {
	f.confirmCalls++
	if f.callbackErr != nil {
		return nil, f.callbackErr
	}
	return f.callbackOutcome, nil
}

func (f *fakeGateway) QueryStatus(ctx context.Context, tx *domain.Transaction) (*ports.CallbackOutcome, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryOutcome, nil
}

func (f *fakeGateway) ParseNotification(values url.Values) (*ports.Notification, error) {
	return &ports.Notification{OrderID: values.Get("oid")}, nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:            "42",
		Name:          "S00042",
		PayableAmount: decimal.RequireFromString("100.50"),
		Currency:      "TRY",
		PartnerEmail:  "buyer@example.com",
		PartnerLang:   "tr_TR",
	}
}

func validCard() domain.CardArgs {
	return domain.CardArgs{
		Number:      "4111111111111111",
		CVV:         "123",
		HolderName:  "Ayşe Yılmaz",
		ExpiryMonth: "09",
		ExpiryYear:  "2027",
	}
}

func newTestCoordinator(gateway ports.CardPaymentGateway) (*Coordinator, *store.TransactionStore, *store.OrderStore) {
	transactions := store.NewTransactionStore()
	orders := store.NewOrderStore(testOrder())
	c := NewCoordinator(gateway, transactions, orders, nil, 2, zap.NewNop())
	return c, transactions, orders
}

func TestInitiatePayment_HappyPath(t *testing.T) {
	gateway := &fakeGateway{
		initiateResult: &ports.InitiateResult{
			Kind:         ports.ResponseKindForm,
			HTML:         `<form id="webform0"></form>`,
			Secure3DHash: "ABCDEF",
		},
	}
	c, transactions, _ := newTestCoordinator(gateway)

	result, tx, err := c.InitiatePayment(context.Background(), "42", validCard(), decimal.RequireFromString("100.50"), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, ports.ResponseKindForm, result.Kind)

	stored, err := transactions.GetByProviderReference(context.Background(), "S00042")
	require.NoError(t, err)
	assert.Equal(t, tx, stored)
	assert.Equal(t, domain.TransactionStatePending, stored.State)
	assert.Equal(t, "ABCDEF", stored.Secure3DHash)
	assert.Equal(t, "S00042", stored.ProviderReference())
}

func TestInitiatePayment_AmountMismatch_NoNetworkCall(t *testing.T) {
	gateway := &fakeGateway{}
	c, _, _ := newTestCoordinator(gateway)

	_, _, err := c.InitiatePayment(context.Background(), "42", validCard(), decimal.RequireFromString("99.00"), "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeValidationAmountInvalid))
	assert.Zero(t, gateway.initiateCalls, "validation must happen before any network call")
}

func TestInitiatePayment_AmountMatchesWithinPrecision(t *testing.T) {
	gateway := &fakeGateway{
		initiateResult: &ports.InitiateResult{Kind: ports.ResponseKindRedirect, HTML: "<html></html>"},
	}
	c, _, _ := newTestCoordinator(gateway)

	// 100.504 rounds to 100.50 at the configured 2-decimal precision.
	_, _, err := c.InitiatePayment(context.Background(), "42", validCard(), decimal.RequireFromString("100.504"), "")
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.initiateCalls)
}

func TestInitiatePayment_InvalidCard(t *testing.T) {
	gateway := &fakeGateway{}
	c, _, _ := newTestCoordinator(gateway)

	card := validCard()
	card.Number = "4111111111111112" // bad check digit

	_, _, err := c.InitiatePayment(context.Background(), "42", card, decimal.RequireFromString("100.50"), "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeValidationCardInvalid))
	assert.Zero(t, gateway.initiateCalls)
}

func TestInitiatePayment_UnknownOrder(t *testing.T) {
	c, _, _ := newTestCoordinator(&fakeGateway{})

	_, _, err := c.InitiatePayment(context.Background(), "404", validCard(), decimal.RequireFromString("100.50"), "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeOrderNotFound))
}

func TestInitiatePayment_GatewayFailureSurfaced(t *testing.T) {
	gateway := &fakeGateway{
		initiateErr: domain.NewDomainError(domain.ErrorCodeTransport, "gateway unreachable"),
	}
	c, transactions, _ := newTestCoordinator(gateway)

	_, tx, err := c.InitiatePayment(context.Background(), "42", validCard(), decimal.RequireFromString("100.50"), "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeTransport))

	// The failure is recorded on the transaction, not silently dropped.
	stored, err := transactions.GetByProviderReference(context.Background(), tx.ProviderReference())
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStateError, stored.State)
	assert.Equal(t, domain.GenericPaymentMessage, stored.StateMessage)
}

func initiatedTransaction(t *testing.T, c *Coordinator, gateway *fakeGateway) *domain.Transaction {
	t.Helper()
	gateway.initiateResult = &ports.InitiateResult{
		Kind: ports.ResponseKindForm, HTML: "<form></form>", Secure3DHash: "HASH",
	}
	_, tx, err := c.InitiatePayment(context.Background(), "42", validCard(), decimal.RequireFromString("100.50"), "")
	require.NoError(t, err)
	return tx
}

func TestHandleCallback_Approved(t *testing.T) {
	gateway := &fakeGateway{
		callbackOutcome: &ports.CallbackOutcome{Approved: true, Message: "Approved"},
	}
	c, _, _ := newTestCoordinator(gateway)
	tx := initiatedTransaction(t, c, gateway)

	got, err := c.HandleCallback(context.Background(), &ports.Notification{OrderID: tx.ProviderReference()})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStateDone, got.State)
	assert.Equal(t, "Approved", got.StateMessage)
	assert.Equal(t, 1, gateway.confirmCalls)
}

func TestHandleCallback_Declined(t *testing.T) {
	gateway := &fakeGateway{
		callbackOutcome: &ports.CallbackOutcome{Approved: false, Reason: "Do not honour"},
	}
	c, _, _ := newTestCoordinator(gateway)
	tx := initiatedTransaction(t, c, gateway)

	got, err := c.HandleCallback(context.Background(), &ports.Notification{OrderID: tx.ProviderReference()})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStateError, got.State)
	assert.Equal(t, "Do not honour", got.StateMessage)
}

func TestHandleCallback_IdempotentOnTerminalState(t *testing.T) {
	gateway := &fakeGateway{
		callbackOutcome: &ports.CallbackOutcome{Approved: true, Message: "Approved"},
	}
	c, _, _ := newTestCoordinator(gateway)
	tx := initiatedTransaction(t, c, gateway)

	notification := &ports.Notification{OrderID: tx.ProviderReference()}

	first, err := c.HandleCallback(context.Background(), notification)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionStateDone, first.State)

	second, err := c.HandleCallback(context.Background(), notification)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionStateDone, second.State)
	assert.Equal(t, first.StateMessage, second.StateMessage)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "terminal state must not transition again")
	assert.Equal(t, 1, gateway.confirmCalls, "repeated callback must not re-run the confirmation")
}

func TestHandleCallback_UnknownTransaction(t *testing.T) {
	c, _, _ := newTestCoordinator(&fakeGateway{})

	_, err := c.HandleCallback(context.Background(), &ports.Notification{OrderID: "S99999"})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeTxnNotFound))
	assert.Contains(t, err.Error(), "Transaction not completed")
}

func TestHandleCallback_TransportFailure(t *testing.T) {
	gateway := &fakeGateway{
		callbackErr: domain.NewDomainError(domain.ErrorCodeTransport, "timeout"),
	}
	c, _, _ := newTestCoordinator(gateway)
	tx := initiatedTransaction(t, c, gateway)

	got, err := c.HandleCallback(context.Background(), &ports.Notification{OrderID: tx.ProviderReference()})
	require.Error(t, err)
	assert.Equal(t, domain.TransactionStateError, got.State)
	assert.Equal(t, domain.GenericPaymentMessage, got.StateMessage)
}

func TestQueryStatus_ProtocolErrorLeavesStateUnchanged(t *testing.T) {
	gateway := &fakeGateway{
		queryErr: domain.NewDomainError(domain.ErrorCodeProtocol, "unparseable gateway XML"),
	}
	c, transactions, _ := newTestCoordinator(gateway)
	tx := initiatedTransaction(t, c, gateway)

	_, err := c.QueryStatus(context.Background(), tx.ProviderReference())
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeProtocol))

	stored, err := transactions.GetByProviderReference(context.Background(), tx.ProviderReference())
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatePending, stored.State, "a failed query must not disturb the record")
}

func TestQueryStatus_Success(t *testing.T) {
	gateway := &fakeGateway{
		queryOutcome: &ports.CallbackOutcome{Approved: true, Message: "Approved"},
	}
	c, _, _ := newTestCoordinator(gateway)
	tx := initiatedTransaction(t, c, gateway)

	outcome, err := c.QueryStatus(context.Background(), tx.ProviderReference())
	require.NoError(t, err)
	assert.True(t, outcome.Approved)
	assert.Equal(t, 1, gateway.queryCalls)
}
