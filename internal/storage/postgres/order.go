package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/user"
)

var (
	_ order.Repository = (*OrderRepository)(nil)
	_ order.Reader     = (*OrderRepository)(nil)
)

const insertOrder = `
INSERT INTO orders (id, user_id, user_name, user_email, user_tier, items, total_final, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`

const selectOrder = `
SELECT id, user_id, user_name, user_email, user_tier, items, total_final, status, created_at
FROM orders
WHERE id = $1`

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save inserts a PROCESSED order for c. Items are stored as JSONB; the
// creation time is assigned by the database.
func (r *OrderRepository) Save(ctx context.Context, c cart.Cart, totalFinal decimal.Decimal) (*order.Order, error) {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling order items: %w", err)
	}

	o := &order.Order{
		ID:         uuid.New().String(),
		Cart:       c,
		TotalFinal: totalFinal,
		Status:     order.StatusProcessed,
	}

	err = r.pool.QueryRow(ctx, insertOrder,
		o.ID,
		c.User.ID,
		c.User.Name,
		c.User.Email,
		c.User.Tier.String(),
		itemsJSON,
		totalFinal,
		o.Status.String(),
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return o, nil
}

// Get loads an order by id. It returns order.ErrNotFound when no row matches.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var (
		o         order.Order
		tier      string
		status    string
		itemsJSON []byte
		createdAt time.Time
	)
	err := r.pool.QueryRow(ctx, selectOrder, id).Scan(
		&o.ID,
		&o.Cart.User.ID,
		&o.Cart.User.Name,
		&o.Cart.User.Email,
		&tier,
		&itemsJSON,
		&o.TotalFinal,
		&status,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if o.Cart.User.Tier, err = user.ParseTier(tier); err != nil {
		return nil, fmt.Errorf("order %q: %w", id, err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Cart.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling items of order %q: %w", id, err)
	}
	o.Status = order.Status(status)
	o.CreatedAt = createdAt

	return &o, nil
}
