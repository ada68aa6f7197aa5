package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/user"
)

// ApprovedSubject is the subject of the email sent after a successful checkout.
const ApprovedSubject = "Your Order was Approved!"

var premiumFactor = decimal.RequireFromString("0.90")

// DiscountFactor returns the multiplier applied to a subtotal for tier t.
// Premium customers pay 90%; every other tier pays full price.
func DiscountFactor(t user.Tier) decimal.Decimal {
	if t.IsPremium() {
		return premiumFactor
	}
	return decimal.NewFromInt(1)
}

// Total computes the amount to charge for c. The result is not rounded.
func Total(c cart.Cart) decimal.Decimal {
	return c.Subtotal().Mul(DiscountFactor(c.User.Tier))
}

// ApprovedBody renders the approval email body, e.g. "Order 42 for $180".
// Trailing zeros of total are dropped.
func ApprovedBody(orderID string, total decimal.Decimal) string {
	return fmt.Sprintf("Order %s for $%s", orderID, total.String())
}
