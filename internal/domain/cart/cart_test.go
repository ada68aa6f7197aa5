package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/kart-checkout/internal/domain/user"
)

func TestCart_Subtotal(t *testing.T) {
	u := user.User{ID: 1, Email: "joao@email.com", Tier: user.TierStandard}

	tests := []struct {
		name  string
		items []Item
		want  decimal.Decimal
	}{
		{
			name: "empty cart",
			want: decimal.Zero,
		},
		{
			name:  "single item",
			items: []Item{{Name: "Notebook", Price: decimal.RequireFromString("150.00")}},
			want:  decimal.NewFromInt(150),
		},
		{
			name: "several items",
			items: []Item{
				{Name: "Notebook", Price: decimal.RequireFromString("150.0")},
				{Name: "Mouse", Price: decimal.RequireFromString("50.0")},
				{Name: "Cable", Price: decimal.RequireFromString("0.10")},
				{Name: "Sticker", Price: decimal.RequireFromString("0.20")},
			},
			want: decimal.RequireFromString("200.30"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(u, tt.items...).Subtotal()
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}
