package user

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrUnknownTier is returned when a tier name is not one of the known tiers.
var ErrUnknownTier = errors.New("unknown customer tier")

// Tier classifies a customer for discount eligibility.
type Tier string

const (
	// TierStandard customers pay full price.
	TierStandard Tier = "STANDARD"
	// TierPremium customers get a discount on every checkout.
	TierPremium Tier = "PREMIUM"
)

// ParseTier converts s to a Tier. Matching is case-insensitive; anything
// other than a known tier yields ErrUnknownTier.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(s))); t {
	case TierStandard, TierPremium:
		return t, nil
	default:
		return "", errors.Wrapf(ErrUnknownTier, "%q", s)
	}
}

// IsPremium reports whether the tier is entitled to the premium discount.
func (t Tier) IsPremium() bool {
	return t == TierPremium
}

func (t Tier) String() string {
	return string(t)
}

// User is a customer account as seen by checkout. Accounts are managed
// elsewhere; checkout only reads them.
type User struct {
	ID    int64
	Name  string
	Email string
	Tier  Tier
}
