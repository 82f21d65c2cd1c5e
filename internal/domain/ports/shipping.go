package ports

import (
	"context"

	"github.com/ecomkit/checkout-service/internal/domain/models"
)

// LabelProvider fetches shipping labels from one carrier's API. Each
// carrier integration registers one implementation; lookup happens
// through an explicit registry checked at startup, never by probing
// method names at call time.
type LabelProvider interface {
	// CarrierType is the identifier the registry keys on, e.g. "aras".
	CarrierType() string
	FetchLabel(ctx context.Context, shipment *models.Shipment) (data []byte, format models.LabelFormat, err error)
}

// LabelPrinter sends raw label data to a configured printer.
type LabelPrinter interface {
	Print(ctx context.Context, printerID string, name string, data []byte) error
}

// Notifier delivers shipment status notifications to the customer.
// Actual email/SMS delivery is an external collaborator.
type Notifier interface {
	TrackingUpdate(ctx context.Context, shipment *models.Shipment) error
	ShipmentMail(ctx context.Context, shipment *models.Shipment) error
}
