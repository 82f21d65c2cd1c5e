package ports

import (
	"context"

	"github.com/ecomkit/checkout-service/internal/domain"
)

// TransactionStore is the external persistence layer for payment
// transactions. The connector only reads and writes through it; locking
// and durability are the store's concern.
type TransactionStore interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	// GetByProviderReference resolves a transaction from the truncated
	// reference the provider echoes back as the order id.
	GetByProviderReference(ctx context.Context, ref string) (*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
}

// OrderStore resolves sale orders for checkout validation.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByName(ctx context.Context, name string) (*domain.Order, error)
}
