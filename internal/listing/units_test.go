package listing

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.5", "1500000000000000000"},
		{"1", "1000000000000000000"},
		{"0.000000000000000001", "1"},
		{".25", "250000000000000000"},
		{"2.", "2000000000000000000"},
		{" 3 ", "3000000000000000000"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseEther_OneAndAHalfIsExact(t *testing.T) {
	got, err := ParseEther("1.5")
	require.NoError(t, err)

	want := new(big.Int).Mul(big.NewInt(15), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	assert.Zero(t, want.Cmp(got))
}

func TestParseEther_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "1e18", "1.2.3", "0.0000000000000000001", "."} {
		_, err := ParseEther(in)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseEther(%q): expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestFormatEther(t *testing.T) {
	tests := []struct {
		wei  string
		want string
	}{
		{"2500000000000000000", "2.5"},
		{"1000000000000000000", "1.0"},
		{"0", "0.0"},
		{"1", "0.000000000000000001"},
		{"123456789000000000000", "123.456789"},
	}

	for _, tt := range tests {
		wei, ok := new(big.Int).SetString(tt.wei, 10)
		require.True(t, ok)
		assert.Equal(t, tt.want, FormatEther(wei), "wei=%s", tt.wei)
	}

	assert.Equal(t, "0.0", FormatEther(nil))
}
