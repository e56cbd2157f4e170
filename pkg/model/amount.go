package model

import (
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// Amount is a token amount in base units. The venue quotes amounts as u128,
// so values may exceed 64 bits; arithmetic is delegated to cosmossdk.io/math.
//
// On the wire an Amount is a bare JSON number (no quotes), matching the
// relayer API. String-encoded numbers are accepted on decode for tolerance.
type Amount struct {
	sdkmath.Int
}

// NewAmount returns an Amount for the given int64 value.
func NewAmount(v int64) Amount {
	return Amount{sdkmath.NewInt(v)}
}

// NewAmountFromBigInt returns an Amount wrapping a copy of b.
func NewAmountFromBigInt(b *big.Int) Amount {
	return Amount{sdkmath.NewIntFromBigInt(new(big.Int).Set(b))}
}

// NewAmountFromString parses a base-10 integer string into an Amount.
func NewAmountFromString(s string) (Amount, error) {
	i, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return Amount{i}, nil
}

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount {
	return Amount{sdkmath.ZeroInt()}
}

// IsSet reports whether the amount was initialized to a non-zero value.
// The zero value of Amount (nil inner int) counts as unset.
func (a Amount) IsSet() bool {
	return !a.Int.IsNil() && !a.Int.IsZero()
}

// Decimal returns the amount as a decimal with no fractional part.
func (a Amount) Decimal() decimal.Decimal {
	if a.Int.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.Int.BigInt(), 0)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{a.orZero().Add(b.orZero())}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{a.orZero().Sub(b.orZero())}
}

// Cmp compares a and b, returning -1, 0, or 1.
func (a Amount) Cmp(b Amount) int {
	return a.orZero().BigInt().Cmp(b.orZero().BigInt())
}

// IsPositive reports a > 0. The unset amount counts as zero.
func (a Amount) IsPositive() bool {
	return a.orZero().IsPositive()
}

// IsNegative reports a < 0. The unset amount counts as zero.
func (a Amount) IsNegative() bool {
	return a.orZero().IsNegative()
}

func (a Amount) orZero() sdkmath.Int {
	if a.Int.IsNil() {
		return sdkmath.ZeroInt()
	}
	return a.Int
}

// MarshalJSON encodes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.Int.IsNil() {
		return []byte("0"), nil
	}
	return []byte(a.Int.String()), nil
}

// UnmarshalJSON decodes either a JSON number or a quoted integer string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		a.Int = sdkmath.ZeroInt()
		return nil
	}
	i, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	a.Int = i
	return nil
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.orZero().String()
}
