package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/user"
)

// --- User mother ---

func standardUser() user.User {
	return user.User{ID: 1, Name: "Joao Silva", Email: "joao@email.com", Tier: user.TierStandard}
}

func premiumUser() user.User {
	return user.User{ID: 2, Name: "Maria Premium", Email: "premium@email.com", Tier: user.TierPremium}
}

// --- Cart builder ---

type cartBuilder struct {
	user  user.User
	items []cart.Item
}

// newCart starts from a standard user with one item priced 100.
func newCart() *cartBuilder {
	return &cartBuilder{
		user:  standardUser(),
		items: []cart.Item{{Name: "Default product", Price: decimal.NewFromInt(100)}},
	}
}

func (b *cartBuilder) withUser(u user.User) *cartBuilder {
	b.user = u
	return b
}

func (b *cartBuilder) withItems(items ...cart.Item) *cartBuilder {
	b.items = items
	return b
}

// withTotal replaces the items with a single item priced total.
func (b *cartBuilder) withTotal(total string) *cartBuilder {
	b.items = []cart.Item{{Name: "Product", Price: decimal.RequireFromString(total)}}
	return b
}

func (b *cartBuilder) empty() *cartBuilder {
	b.items = nil
	return b
}

func (b *cartBuilder) build() cart.Cart {
	return cart.New(b.user, b.items...)
}

func item(name, price string) cart.Item {
	return cart.Item{Name: name, Price: decimal.RequireFromString(price)}
}
