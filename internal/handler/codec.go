package handler

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/cart"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/user"
)

// Price bounds accepted from clients.
const (
	maxPriceLen   = 32
	maxPriceScale = 4
)

var maxPrice = decimal.NewFromInt(1_000_000_000)

var (
	// errNegativePrice rejects items priced below zero.
	errNegativePrice = errors.New("item price must not be negative")
	// errPriceOutOfRange rejects prices that are too large or too precise.
	errPriceOutOfRange = errors.New("item price out of range")
)

// malformedError marks a body that is not a valid checkout request.
type malformedError struct {
	err error
}

func (e *malformedError) Error() string { return "malformed request: " + e.err.Error() }

func (e *malformedError) Unwrap() error { return e.err }

type checkoutRequest struct {
	Cart         cart.Cart
	PaymentToken string
}

// decodeCheckout parses
//
//	{"user":{"id":1,"name":"..","email":"..","tier":"PREMIUM"},
//	 "items":[{"name":"..","price":10.5}],
//	 "paymentToken":".."}
//
// Syntax errors are returned as *malformedError; an unknown tier as
// user.ErrUnknownTier, a negative price as errNegativePrice and a price
// above maxPrice or with more than maxPriceScale decimal places as
// errPriceOutOfRange.
func decodeCheckout(data []byte) (checkoutRequest, error) {
	var (
		req  checkoutRequest
		tier string
	)
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "user":
			return decodeUser(d, &req.Cart.User, &tier)
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				req.Cart.Items = append(req.Cart.Items, item)
				return nil
			})
		case "paymentToken":
			v, err := d.Str()
			req.PaymentToken = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		if errors.Is(err, errPriceOutOfRange) {
			return checkoutRequest{}, err
		}
		return checkoutRequest{}, &malformedError{err: err}
	}

	if req.Cart.User.Tier, err = user.ParseTier(tier); err != nil {
		return checkoutRequest{}, err
	}
	for _, item := range req.Cart.Items {
		if err := checkPrice(item.Price); err != nil {
			return checkoutRequest{}, errors.Wrapf(err, "item %q", item.Name)
		}
	}
	return req, nil
}

// checkPrice validates a decoded price. The exponent is bounded before any
// arithmetic so that comparisons never expand a huge coefficient.
func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return errNegativePrice
	}
	if e := p.Exponent(); e > maxPriceLen || e < -maxPriceLen {
		return errPriceOutOfRange
	}
	if p.GreaterThan(maxPrice) || !p.Equal(p.Truncate(maxPriceScale)) {
		return errPriceOutOfRange
	}
	return nil
}

func decodeUser(d *jx.Decoder, u *user.User, tier *string) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			u.ID, err = d.Int64()
		case "name":
			u.Name, err = d.Str()
		case "email":
			u.Email, err = d.Str()
		case "tier":
			*tier, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
}

func decodeItem(d *jx.Decoder) (cart.Item, error) {
	var item cart.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			item.Name, err = d.Str()
		case "price":
			item.Price, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

// decodeDecimal accepts a JSON number or a numeric string without going
// through float64. Literals longer than maxPriceLen are rejected unparsed.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = string(n)
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	default:
		return decimal.Decimal{}, errors.New("price must be a number")
	}
	if len(raw) > maxPriceLen {
		return decimal.Decimal{}, errPriceOutOfRange
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse price")
	}
	return v, nil
}

func encodeOrder(o *order.Order) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(o.Status.String()) })
		e.Field("totalFinal", func(e *jx.Encoder) { encodeDecimal(e, o.TotalFinal) })
		e.Field("user", func(e *jx.Encoder) {
			u := o.Cart.User
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(u.Name) })
				e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
				e.Field("tier", func(e *jx.Encoder) { e.Str(u.Tier.String()) })
			})
		})
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Cart.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
						e.Field("price", func(e *jx.Encoder) { encodeDecimal(e, item.Price) })
					})
				}
			})
		})
		if !o.CreatedAt.IsZero() {
			e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339Nano)) })
		}
	})
	return e.Bytes()
}

// encodeDecimal writes v as a bare JSON number, e.g. 180 or 17.991.
func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Raw([]byte(v.String()))
}
