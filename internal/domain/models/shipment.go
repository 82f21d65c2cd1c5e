package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryState mirrors the carrier-side lifecycle of a shipment.
type DeliveryState string

const (
	DeliveryStateDraft     DeliveryState = "draft"
	DeliveryStateShipped   DeliveryState = "shipped"
	DeliveryStateInTransit DeliveryState = "in_transit"
	DeliveryStateDelivered DeliveryState = "delivered"
	DeliveryStateCancelled DeliveryState = "cancelled"
)

// LabelFormat is the file format a carrier returns labels in.
type LabelFormat string

const (
	LabelFormatPDF LabelFormat = "pdf"
	LabelFormatZPL LabelFormat = "zpl"
)

// Carrier holds the delivery-method configuration a shipment is booked with.
type Carrier struct {
	Name string
	// Type identifies the carrier integration, e.g. "aras", "yurtici".
	Type string
	// Currency is the fallback shipping currency when the order has none.
	Currency string
	// BarcodeFormat selects between attaching a PDF and printing raw ZPL.
	BarcodeFormat LabelFormat
	// AttachBarcode attaches the label to the shipment record instead of
	// sending it to the printer.
	AttachBarcode bool
	// PrinterID is the default printer for ZPL output; required when the
	// label is printed rather than attached.
	PrinterID string
	// NotifyCustomer enables tracking notifications on state changes.
	NotifyCustomer bool
}

// ShipmentLine is one stock move on a shipment, tied back to the sale
// order line it fulfils.
type ShipmentLine struct {
	// Deci is the volumetric weight of this line.
	Deci decimal.Decimal
	// OrderDeliveryCost is the delivery charge on the originating order.
	OrderDeliveryCost decimal.Decimal
	// OrderTotalDeci is the total deci of the originating order, used to
	// spread the delivery charge across shipments.
	OrderTotalDeci decimal.Decimal
}

// Shipment carries the carrier/shipment metadata added to a delivery record.
type Shipment struct {
	ID             string
	OrderName      string
	Carrier        Carrier
	Lines          []ShipmentLine
	PackageCount   int
	TrackingNumber string
	ReceivedBy     string
	// CarrierTotalDeci is the deci the carrier measured at reception.
	CarrierTotalDeci decimal.Decimal
	// MeasuredExitWeight is the total weight measured at warehouse exit.
	MeasuredExitWeight decimal.Decimal
	// Carrier-invoiced amounts.
	CarrierShippingCost  decimal.Decimal
	CarrierShippingVAT   decimal.Decimal
	CarrierShippingTotal decimal.Decimal
	// OrderCurrency is the currency of the originating sale order, if any.
	OrderCurrency   string
	CompanyCurrency string
	DeliveryState   DeliveryState
	MailSent        bool
	PartnerEmail    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TotalDeci sums the deci of all lines on the shipment.
func (s *Shipment) TotalDeci() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Deci)
	}
	return total
}

// SaleShippingCost computes the VAT-free shipping revenue allocated to
// this shipment: each line gets its order's delivery charge weighted by
// the line's share of the order's total deci.
func (s *Shipment) SaleShippingCost() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		if line.OrderDeliveryCost.IsZero() || line.OrderTotalDeci.IsZero() {
			continue
		}
		total = total.Add(line.OrderDeliveryCost.Div(line.OrderTotalDeci).Mul(line.Deci))
	}
	return total
}

// ShippingCurrency resolves the currency for shipping amounts: order
// currency first, then the carrier's, then the company's.
func (s *Shipment) ShippingCurrency() string {
	if s.OrderCurrency != "" {
		return s.OrderCurrency
	}
	if s.Carrier.Currency != "" {
		return s.Carrier.Currency
	}
	return s.CompanyCurrency
}
