// Package shipments exposes the delivery-record bookkeeping endpoints:
// label fetching, delivery-state updates and the customer status mail.
package shipments

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/models"
	"github.com/ecomkit/checkout-service/internal/services/shipping"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler serves the shipment endpoints. Shipments live in memory; the
// durable record belongs to the host platform.
type Handler struct {
	service *shipping.Service
	logger  *zap.Logger

	mu        sync.RWMutex
	shipments map[string]*models.Shipment
}

// NewHandler creates a shipments handler.
func NewHandler(service *shipping.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		shipments: make(map[string]*models.Shipment),
	}
}

// AppendRoutes mounts the shipment routes onto the router.
func (h *Handler) AppendRoutes(router chi.Router) {
	router.Post("/shipments", h.Create)
	router.Get("/shipments/{id}", h.Get)
	router.Post("/shipments/{id}/label", h.FetchLabel)
	router.Post("/shipments/{id}/state", h.SetState)
	router.Post("/shipments/{id}/mail", h.SendMail)
}

type shipmentLine struct {
	Deci              string `json:"deci"`
	OrderDeliveryCost string `json:"order_delivery_cost"`
	OrderTotalDeci    string `json:"order_total_deci"`
}

type createShipmentRequest struct {
	ID              string         `json:"id"`
	OrderName       string         `json:"order_name"`
	CarrierName     string         `json:"carrier_name"`
	CarrierType     string         `json:"carrier_type"`
	CarrierCurrency string         `json:"carrier_currency"`
	AttachBarcode   bool           `json:"attach_barcode"`
	PrinterID       string         `json:"printer_id"`
	OrderCurrency   string         `json:"order_currency"`
	CompanyCurrency string         `json:"company_currency"`
	PartnerEmail    string         `json:"partner_email"`
	TrackingNumber  string         `json:"tracking_number"`
	PackageCount    int            `json:"package_count"`
	Lines           []shipmentLine `json:"lines"`
}

// Create registers a shipment record.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "shipment id is required", http.StatusBadRequest)
		return
	}

	lines := make([]models.ShipmentLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		deci, err := decimal.NewFromString(l.Deci)
		if err != nil {
			http.Error(w, "invalid deci value", http.StatusBadRequest)
			return
		}
		cost, _ := decimal.NewFromString(l.OrderDeliveryCost)
		totalDeci, _ := decimal.NewFromString(l.OrderTotalDeci)
		lines = append(lines, models.ShipmentLine{
			Deci:              deci,
			OrderDeliveryCost: cost,
			OrderTotalDeci:    totalDeci,
		})
	}

	packageCount := req.PackageCount
	if packageCount == 0 {
		packageCount = 1
	}

	shipment := &models.Shipment{
		ID:        req.ID,
		OrderName: req.OrderName,
		Carrier: models.Carrier{
			Name:           req.CarrierName,
			Type:           req.CarrierType,
			Currency:       req.CarrierCurrency,
			AttachBarcode:  req.AttachBarcode,
			PrinterID:      req.PrinterID,
			NotifyCustomer: true,
		},
		Lines:           lines,
		PackageCount:    packageCount,
		TrackingNumber:  req.TrackingNumber,
		OrderCurrency:   req.OrderCurrency,
		CompanyCurrency: req.CompanyCurrency,
		PartnerEmail:    req.PartnerEmail,
		DeliveryState:   models.DeliveryStateDraft,
		CreatedAt:       time.Now(),
	}

	h.mu.Lock()
	h.shipments[shipment.ID] = shipment
	h.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
}

type shipmentResponse struct {
	ID               string `json:"id"`
	OrderName        string `json:"order_name"`
	DeliveryState    string `json:"delivery_state"`
	TrackingNumber   string `json:"tracking_number"`
	PackageCount     int    `json:"package_count"`
	TotalDeci        string `json:"total_deci"`
	SaleShippingCost string `json:"sale_shipping_cost"`
	ShippingCurrency string `json:"shipping_currency"`
	MailSent         bool   `json:"mail_sent"`
}

// Get returns a shipment with its computed fields.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "shipment not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, shipmentResponse{
		ID:               shipment.ID,
		OrderName:        shipment.OrderName,
		DeliveryState:    string(shipment.DeliveryState),
		TrackingNumber:   shipment.TrackingNumber,
		PackageCount:     shipment.PackageCount,
		TotalDeci:        shipment.TotalDeci().String(),
		SaleShippingCost: shipment.SaleShippingCost().String(),
		ShippingCurrency: shipment.ShippingCurrency(),
		MailSent:         shipment.MailSent,
	})
}

// FetchLabel fetches and attaches or prints the carrier label.
func (h *Handler) FetchLabel(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "shipment not found", http.StatusNotFound)
		return
	}

	label, err := h.service.FetchLabel(r.Context(), shipment)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     label.Name,
		"format":   string(label.Format),
		"attached": label.Attached,
	})
}

type setStateRequest struct {
	State string `json:"state"`
}

// SetState transitions the shipment's delivery state.
func (h *Handler) SetState(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "shipment not found", http.StatusNotFound)
		return
	}

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetDeliveryState(r.Context(), shipment, models.DeliveryState(req.State)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMail sends the shipment status mail to the customer, once.
func (h *Handler) SendMail(w http.ResponseWriter, r *http.Request) {
	shipment, ok := h.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "shipment not found", http.StatusNotFound)
		return
	}

	if err := h.service.SendStatusMail(r.Context(), shipment); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(id string) (*models.Shipment, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	shipment, ok := h.shipments[id]
	return shipment, ok
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrorCodeCarrierNotFound, domain.ErrorCodePrinterMissing:
			status = http.StatusUnprocessableEntity
		}
	}
	h.logger.Error("shipment request failed", zap.Error(err))
	http.Error(w, err.Error(), status)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encoding response", zap.Error(err))
	}
}
