package listing

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of wei decimal places in one ether.
const EtherDecimals = 18

// ErrInvalidAmount is returned when a human-readable amount cannot be
// converted to wei.
var ErrInvalidAmount = errors.New("invalid amount")

var amountPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

// ParseEther converts a decimal ether string ("1.5") to wei.
// The conversion is exact; more than 18 fractional digits is an error.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 > EtherDecimals {
		return nil, fmt.Errorf("%w: %q exceeds %d decimals", ErrInvalidAmount, s, EtherDecimals)
	}

	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return d.Shift(EtherDecimals).BigInt(), nil
}

// FormatEther renders wei as a decimal ether string.
// Output always carries a fractional part: 1e18 → "1.0", 2.5e18 → "2.5".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(wei, -EtherDecimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
