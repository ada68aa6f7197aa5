package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/user"
)

// Item is a priced line in a cart.
type Item struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Cart is the unsaved collection of items a user wants to buy.
type Cart struct {
	User  user.User
	Items []Item
}

// New returns a cart for u holding items.
func New(u user.User, items ...Item) Cart {
	return Cart{User: u, Items: items}
}

// Subtotal sums item prices. An empty cart has a zero subtotal.
func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Price)
	}
	return subtotal
}
