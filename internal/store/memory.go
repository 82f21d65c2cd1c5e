// Package store provides in-memory implementations of the persistence
// ports. Durable bookkeeping belongs to the host platform; these stores
// stand in for it and keep the locking discipline the coordinator
// relies on.
package store

import (
	"context"
	"sync"

	"github.com/ecomkit/checkout-service/internal/domain"
)

// TransactionStore is a mutex-guarded in-memory transaction store.
type TransactionStore struct {
	mu sync.RWMutex
	// byRef indexes transactions by their provider-facing reference,
	// the key the gateway echoes back on callbacks.
	byRef map[string]*domain.Transaction
}

// NewTransactionStore creates an empty transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{byRef: make(map[string]*domain.Transaction)}
}

// Create stores a new transaction keyed by its provider reference.
func (s *TransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRef[tx.ProviderReference()] = tx
	return nil
}

// GetByProviderReference resolves a transaction from the truncated
// reference the provider sends back.
func (s *TransactionStore) GetByProviderReference(ctx context.Context, ref string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.byRef[ref]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeTxnNotFound, "transaction not found: "+ref)
	}
	return tx, nil
}

// Update persists transaction changes. The in-memory store shares the
// pointer, so this only validates the transaction is known.
func (s *TransactionStore) Update(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byRef[tx.ProviderReference()]; !ok {
		return domain.NewDomainError(domain.ErrorCodeTxnNotFound, "transaction not found: "+tx.ProviderReference())
	}
	s.byRef[tx.ProviderReference()] = tx
	return nil
}

// OrderStore is a read-only in-memory order lookup.
type OrderStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Order
	byName map[string]*domain.Order
}

// NewOrderStore creates an order store seeded with the given orders.
func NewOrderStore(orders ...*domain.Order) *OrderStore {
	s := &OrderStore{
		byID:   make(map[string]*domain.Order),
		byName: make(map[string]*domain.Order),
	}
	for _, o := range orders {
		s.byID[o.ID] = o
		s.byName[o.Name] = o
	}
	return s
}

// Add registers an order.
func (s *OrderStore) Add(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.ID] = o
	s.byName[o.Name] = o
}

// GetByID resolves an order by its identifier.
func (s *OrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeOrderNotFound, "sale order not found")
	}
	return o, nil
}

// GetByName resolves an order by its display name, the value the
// provider echoes back as the order id.
func (s *OrderStore) GetByName(ctx context.Context, name string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byName[name]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeOrderNotFound, "sale order not found")
	}
	return o, nil
}
