package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "1", want: "1000000000000000000"},
		{raw: "0.015", want: "15000000000000000"},
		{raw: ".5", want: "500000000000000000"},
		{raw: "2.", want: "2000000000000000000"},
		{raw: "0.000000000000000001", want: "1"},
		{raw: "123456789012345678901234567890", want: "123456789012345678901234567890000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseEther(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseEtherRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", ".", "-1", "1.2.3", "abc", "1e18", "0.0000000000000000001"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseEther(raw)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFormatEther(t *testing.T) {
	wei, ok := new(big.Int).SetString("15000000000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "0.015", FormatEther(wei))
	assert.Equal(t, "1.0", FormatEther(big.NewInt(0).Exp(big.NewInt(10), big.NewInt(18), nil)))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
	assert.Equal(t, "0.0", FormatEther(nil))
	assert.Equal(t, "-0.5", FormatEther(big.NewInt(-500000000000000000)))
}

func TestParseFormatEtherRoundTrip(t *testing.T) {
	for _, raw := range []string{"0.1", "3.14159", "42.0"} {
		wei, err := ParseEther(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, FormatEther(wei))
	}
}

func TestNextMinimumBid(t *testing.T) {
	huge, ok := new(big.Int).SetString("9007199254740993000000000", 10)
	require.True(t, ok)

	assert.Equal(t, "9007199254740993000000001", NextMinimumBid(huge).String())
	assert.Equal(t, "9007199254740993000000000", huge.String())
	assert.Equal(t, int64(1), NextMinimumBid(nil).Int64())
}
