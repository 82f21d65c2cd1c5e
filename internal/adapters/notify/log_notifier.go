// Package notify contains stand-in implementations for the external
// notification and printing collaborators. Real delivery happens in the
// host platform; these adapters only record the intent.
package notify

import (
	"context"

	"github.com/ecomkit/checkout-service/internal/domain/models"
	"go.uber.org/zap"
)

// LogNotifier logs notification intents instead of delivering them.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a logging notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// TrackingUpdate records a tracking-status notification.
func (n *LogNotifier) TrackingUpdate(ctx context.Context, shipment *models.Shipment) error {
	n.logger.Info("tracking notification",
		zap.String("shipment", shipment.ID),
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.String("state", string(shipment.DeliveryState)),
	)
	return nil
}

// ShipmentMail records a shipment status mail send.
func (n *LogNotifier) ShipmentMail(ctx context.Context, shipment *models.Shipment) error {
	n.logger.Info("shipment status mail",
		zap.String("shipment", shipment.ID),
		zap.String("email", shipment.PartnerEmail),
	)
	return nil
}

// LogPrinter logs print jobs instead of sending them to hardware.
type LogPrinter struct {
	logger *zap.Logger
}

// NewLogPrinter creates a logging printer.
func NewLogPrinter(logger *zap.Logger) *LogPrinter {
	return &LogPrinter{logger: logger}
}

// Print records a label print job.
func (p *LogPrinter) Print(ctx context.Context, printerID, name string, data []byte) error {
	p.logger.Info("label print job",
		zap.String("printer", printerID),
		zap.String("label", name),
		zap.Int("bytes", len(data)),
	)
	return nil
}
