// Package sandbox implements a payment gateway that approves or declines
// charges from local rules without contacting a card processor.
package sandbox

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/payment"
)

var _ payment.Gateway = (*Gateway)(nil)

// Config holds the decline rules of the sandbox gateway.
type Config struct {
	// Blocklist tokens are always declined.
	Blocklist *Blocklist
	// MaxAmount, when positive, declines any charge above it.
	MaxAmount decimal.Decimal
}

// Gateway approves every charge that does not hit a decline rule.
type Gateway struct {
	blocklist *Blocklist
	maxAmount decimal.Decimal
}

// New creates a sandbox Gateway.
func New(cfg Config) *Gateway {
	return &Gateway{
		blocklist: cfg.Blocklist,
		maxAmount: cfg.MaxAmount,
	}
}

// Charge declines blocklisted tokens, negative amounts and amounts over the
// limit. It never returns an error.
func (g *Gateway) Charge(ctx context.Context, amount decimal.Decimal, token string) (payment.Result, error) {
	lg := zctx.From(ctx)

	switch {
	case amount.IsNegative():
		lg.Debug("Sandbox decline: negative amount", zap.Stringer("amount", amount))
		return payment.Declined(), nil
	case g.maxAmount.IsPositive() && amount.GreaterThan(g.maxAmount):
		lg.Debug("Sandbox decline: over limit",
			zap.Stringer("amount", amount),
			zap.Stringer("limit", g.maxAmount),
		)
		return payment.Declined(), nil
	case g.blocklist.Contains(token):
		lg.Debug("Sandbox decline: blocked token")
		return payment.Declined(), nil
	}

	return payment.Approved(), nil
}
