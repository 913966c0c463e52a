package archery_test

import (
	"testing"

	"github.com/sejersbol/bullseye/internal/archery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore_ValidSymbols(t *testing.T) {
	cases := map[string]int{
		"X": 10, "M": 0,
		"1": 1, "2": 2, "3": 3, "4": 4, "5": 5,
		"6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	}
	for symbol, want := range cases {
		value, err := archery.ParseScore(symbol)
		require.NoError(t, err, "symbol %q should parse", symbol)
		assert.Equal(t, want, value, "symbol %q", symbol)
	}
}

func TestParseScore_Invalid(t *testing.T) {
	for _, symbol := range []string{"11", "0", "0X", "", "x", "m", "-1", "07", "ten", "10.0"} {
		_, err := archery.ParseScore(symbol)
		require.Error(t, err, "symbol %q should be rejected", symbol)
		assert.ErrorIs(t, err, archery.ErrMalformedScore)
	}
}
