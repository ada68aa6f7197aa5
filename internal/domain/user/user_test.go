package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "STANDARD", want: TierStandard},
		{in: "PREMIUM", want: TierPremium},
		{in: "premium", want: TierPremium},
		{in: " Standard ", want: TierStandard},
		{in: "GOLD", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownTier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTier_IsPremium(t *testing.T) {
	assert.True(t, TierPremium.IsPremium())
	assert.False(t, TierStandard.IsPremium())
	assert.False(t, Tier("").IsPremium())
}
