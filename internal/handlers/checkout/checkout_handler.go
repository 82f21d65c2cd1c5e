// Package checkout exposes the inbound payment endpoints: the initiate
// call made from the checkout page and the return endpoint the provider
// redirects the payer through after the 3-D Secure challenge.
package checkout

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"github.com/ecomkit/checkout-service/internal/services/payment"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const genericReturnError = "An error occurred. Please contact the administrator."

// Handler serves the checkout payment endpoints.
type Handler struct {
	coordinator *payment.Coordinator
	orders      ports.OrderStore
	logger      *zap.Logger
}

// NewHandler creates a checkout handler.
func NewHandler(coordinator *payment.Coordinator, orders ports.OrderStore, logger *zap.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		orders:      orders,
		logger:      logger,
	}
}

// AppendRoutes mounts the payment routes onto the router.
func (h *Handler) AppendRoutes(router chi.Router) {
	router.Post("/payment/garanti/create", h.Create)
	// The provider redirects with either GET or POST depending on the
	// card network.
	router.Get("/payment/garanti/return", h.Return)
	router.Post("/payment/garanti/return", h.Return)
	router.Get("/payment/garanti/status/{ref}", h.Status)
}

type createRequest struct {
	OrderID      string `json:"order_id"`
	CardNumber   string `json:"cc_number"`
	CardCVC      string `json:"cc_cvc"`
	CardHolder   string `json:"cc_holder_name"`
	CardExpMonth string `json:"cc_expiry_month"`
	CardExpYear  string `json:"cc_expiry_year"`
	AmountTotal  string `json:"amount_total"`
}

type createResponse struct {
	Kind string `json:"kind"`
	HTML string `json:"html"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create handles the checkout submission: validates the card and
// amount, then initiates the 3-D Secure flow. The response carries
// either a challenge form to render or a redirect page.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(req.AmountTotal)
	if err != nil {
		h.writeError(w, domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid, "Invalid amount"))
		return
	}

	card := domain.CardArgs{
		Number:      req.CardNumber,
		CVV:         req.CardCVC,
		HolderName:  req.CardHolder,
		ExpiryMonth: req.CardExpMonth,
		ExpiryYear:  req.CardExpYear,
	}

	result, _, err := h.coordinator.InitiatePayment(r.Context(), req.OrderID, card, amount, clientIP(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, createResponse{
		Kind: string(result.Kind),
		HTML: result.HTML,
	})
}

// Return handles the provider redirect after the 3-D Secure challenge.
// On success the payer lands on the order status page; on failure the
// handler still tries to route them back to the originating order.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	values := h.notificationValues(r)

	notification, err := h.coordinator.Gateway().ParseNotification(values)
	if err != nil {
		h.redirectBestEffort(w, r, values, err)
		return
	}

	tx, err := h.coordinator.HandleCallback(r.Context(), notification)
	if err != nil {
		h.redirectBestEffort(w, r, values, err)
		return
	}

	order, err := h.orders.GetByName(r.Context(), tx.OrderName)
	if err != nil {
		h.redirectBestEffort(w, r, values, err)
		return
	}

	http.Redirect(w, r, order.StatusURL(), http.StatusFound)
}

type statusResponse struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Status re-checks a transaction at the provider on demand.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	outcome, err := h.coordinator.QueryStatus(r.Context(), ref)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{
		Approved: outcome.Approved,
		Message:  outcome.Message,
		Reason:   outcome.Reason,
	})
}

// notificationValues merges query and form values into one flat payload.
func (h *Handler) notificationValues(r *http.Request) url.Values {
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("parsing return payload", zap.Error(err))
	}
	values := url.Values{}
	for k, v := range r.URL.Query() {
		values[k] = v
	}
	for k, v := range r.PostForm {
		values[k] = v
	}
	return values
}

// redirectBestEffort routes the payer back to the originating order's
// status page when the order can still be identified, otherwise returns
// a generic error message.
func (h *Handler) redirectBestEffort(w http.ResponseWriter, r *http.Request, values url.Values, cause error) {
	h.logger.Error("payment return failed", zap.Error(cause))

	orderName := values.Get("oid")
	if orderName == "" {
		orderName = values.Get("orderid")
	}
	if orderName != "" {
		if order, err := h.orders.GetByName(r.Context(), orderName); err == nil {
			http.Redirect(w, r, order.StatusURL(), http.StatusFound)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(genericReturnError))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encoding response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.UserMessage()
		switch domainErr.Code {
		case domain.ErrorCodeValidationFailed,
			domain.ErrorCodeValidationAmountInvalid,
			domain.ErrorCodeValidationCardInvalid:
			status = http.StatusBadRequest
		case domain.ErrorCodeOrderNotFound, domain.ErrorCodeTxnNotFound:
			status = http.StatusNotFound
		case domain.ErrorCodeGatewayDeclined, domain.ErrorCodeNotAuthenticated:
			status = http.StatusPaymentRequired
		case domain.ErrorCodeTransport, domain.ErrorCodeProtocol:
			status = http.StatusBadGateway
		}
	}

	h.logger.Error("checkout request failed", zap.Error(err), zap.Int("status", status))
	h.writeJSON(w, status, errorResponse{Error: message})
}

// clientIP extracts the payer's address for the gateway request.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
