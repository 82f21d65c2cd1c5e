// Package shipping keeps the carrier/shipment metadata on delivery
// records current: label fetching through the carrier registry,
// tracking notifications and the customer status mail.
package shipping

import (
	"context"
	"fmt"

	"github.com/ecomkit/checkout-service/internal/domain"
	"github.com/ecomkit/checkout-service/internal/domain/models"
	"github.com/ecomkit/checkout-service/internal/domain/ports"
	"go.uber.org/zap"
)

// Label is a fetched shipping label ready to attach or print.
type Label struct {
	Name   string
	Format models.LabelFormat
	Data   []byte
	// Attached is true when the label was stored on the record instead
	// of being sent to the printer.
	Attached bool
}

// Service implements the shipment bookkeeping operations.
type Service struct {
	registry *Registry
	printer  ports.LabelPrinter
	notifier ports.Notifier
	logger   *zap.Logger
}

// NewService creates a shipping service.
func NewService(registry *Registry, printer ports.LabelPrinter, notifier ports.Notifier, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		printer:  printer,
		notifier: notifier,
		logger:   logger,
	}
}

// FetchLabel retrieves the carrier label for a shipment and either
// attaches it to the record or prints it, per carrier configuration.
func (s *Service) FetchLabel(ctx context.Context, shipment *models.Shipment) (*Label, error) {
	provider, ok := s.registry.Lookup(shipment.Carrier.Type)
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeCarrierNotFound,
			fmt.Sprintf("no label provider registered for carrier %s", shipment.Carrier.Name))
	}

	data, format, err := provider.FetchLabel(ctx, shipment)
	if err != nil {
		return nil, err
	}

	label := &Label{
		Name:   labelName(shipment, format),
		Format: format,
		Data:   data,
	}

	if shipment.Carrier.AttachBarcode {
		label.Attached = true
		s.logger.Info("label attached to shipment",
			zap.String("shipment", shipment.ID),
			zap.String("carrier", shipment.Carrier.Name),
		)
		return label, nil
	}

	if shipment.Carrier.PrinterID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodePrinterMissing,
			fmt.Sprintf("no default printer defined for the carrier %s", shipment.Carrier.Name))
	}
	if err := s.printer.Print(ctx, shipment.Carrier.PrinterID, label.Name, data); err != nil {
		return nil, err
	}
	s.logger.Info("label printed",
		zap.String("shipment", shipment.ID),
		zap.String("printer", shipment.Carrier.PrinterID),
	)
	return label, nil
}

// SetDeliveryState transitions the shipment's delivery state and fires
// a tracking notification when the shipment goes in transit.
func (s *Service) SetDeliveryState(ctx context.Context, shipment *models.Shipment, state models.DeliveryState) error {
	previous := shipment.DeliveryState
	if previous == state {
		return nil
	}
	shipment.DeliveryState = state

	if state == models.DeliveryStateInTransit && shipment.Carrier.NotifyCustomer {
		if err := s.notifier.TrackingUpdate(ctx, shipment); err != nil {
			// Notification failure must not block the state change.
			s.logger.Warn("tracking notification failed",
				zap.Error(err),
				zap.String("shipment", shipment.ID),
			)
		}
	}
	return nil
}

// SendStatusMail sends the shipment status mail once. Re-invocation is
// a no-op after the mail-sent flag is set.
func (s *Service) SendStatusMail(ctx context.Context, shipment *models.Shipment) error {
	if shipment.MailSent {
		return nil
	}
	if shipment.PartnerEmail == "" {
		return nil
	}
	if err := s.notifier.ShipmentMail(ctx, shipment); err != nil {
		return err
	}
	shipment.MailSent = true
	return nil
}

func labelName(shipment *models.Shipment, format models.LabelFormat) string {
	return fmt.Sprintf("%s_etiket_%s.%s", shipment.Carrier.Type, shipment.TrackingNumber, format)
}
