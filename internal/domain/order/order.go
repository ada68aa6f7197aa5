package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/cart"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the lifecycle state of a persisted order.
type Status string

// StatusProcessed marks an order that was charged and stored.
const StatusProcessed Status = "PROCESSED"

func (s Status) String() string {
	return string(s)
}

// Order is the persisted record of a charged purchase. Orders are only
// created by a Repository; ID, Status and CreatedAt are assigned there.
type Order struct {
	ID         string
	Cart       cart.Cart
	TotalFinal decimal.Decimal
	Status     Status
	CreatedAt  time.Time
}

// Repository persists orders for successful charges.
type Repository interface {
	// Save stores a new order for c charged at totalFinal and returns the
	// canonical record. The returned TotalFinal equals totalFinal.
	Save(ctx context.Context, c cart.Cart, totalFinal decimal.Decimal) (*Order, error)
}

// Reader looks up persisted orders.
type Reader interface {
	Get(ctx context.Context, id string) (*Order, error)
}
