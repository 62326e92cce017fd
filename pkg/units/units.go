// Package units converts between human readable ether/token amounts and their
// 18-decimal base unit representation.
package units

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of decimals used by ether and the RED token.
const Decimals = 18

// ToWei converts a decimal string such as "0.5" or "48000000" into base units.
// Fractions finer than 10^-18 are rejected.
func ToWei(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: negative", amount)
	}
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimals", amount, Decimals)
	}
	return scaled.BigInt(), nil
}

// MustToWei is ToWei for constants; it panics on malformed input.
func MustToWei(amount string) *big.Int {
	v, err := ToWei(amount)
	if err != nil {
		panic(err)
	}
	return v
}

// FromWei renders base units as a decimal string without trailing zeros.
func FromWei(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -Decimals).String()
}

// Ether returns n whole units scaled by 10^18.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil))
}
