package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Result is the gateway's answer to a charge attempt.
type Result struct {
	// Success is false when the charge was declined. A decline is a normal
	// outcome, not an error.
	Success bool
}

// Approved is the Result of an accepted charge.
func Approved() Result { return Result{Success: true} }

// Declined is the Result of a rejected charge.
func Declined() Result { return Result{Success: false} }

// Gateway charges a customer's payment method.
//
// Implementations report business declines through Result and reserve the
// error return for transport or processing faults.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, token string) (Result, error)
}
