// Package memory provides in-process storage used when no database is
// configured and in tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/order"
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Reader     = (*OrderRepository)(nil)
)

// OrderRepository keeps orders in a map guarded by a mutex.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
	now    func() time.Time
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]order.Order),
		now:    time.Now,
	}
}

// Save assigns a new UUID and stores the order as PROCESSED.
func (r *OrderRepository) Save(_ context.Context, c cart.Cart, totalFinal decimal.Decimal) (*order.Order, error) {
	o := order.Order{
		ID:         uuid.New().String(),
		Cart:       cloneCart(c),
		TotalFinal: totalFinal,
		Status:     order.StatusProcessed,
		CreatedAt:  r.now().UTC(),
	}

	r.mu.Lock()
	r.orders[o.ID] = o
	r.mu.Unlock()

	// Hand out a copy so callers cannot mutate stored items.
	o.Cart = cloneCart(o.Cart)
	return &o, nil
}

// Get returns the order with the given id or order.ErrNotFound.
func (r *OrderRepository) Get(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	o, ok := r.orders[id]
	r.mu.RUnlock()

	if !ok {
		return nil, order.ErrNotFound
	}
	o.Cart = cloneCart(o.Cart)
	return &o, nil
}

// Len reports how many orders are stored.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func cloneCart(c cart.Cart) cart.Cart {
	c.Items = slices.Clone(c.Items)
	return c
}
