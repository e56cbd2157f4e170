package model

import (
	"fmt"
	"regexp"
	"strings"
)

// OrderSide is the direction of an order relative to the base token.
type OrderSide string

const (
	// Buy buys the base token with the quote token.
	Buy OrderSide = "Buy"
	// Sell sells the base token for the quote token.
	Sell OrderSide = "Sell"
)

// Valid reports whether the side is one of the two known values.
func (s OrderSide) Valid() bool {
	return s == Buy || s == Sell
}

var hexAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeMint lowercases a hex token address for comparison.
func NormalizeMint(mint string) string {
	return strings.ToLower(mint)
}

// SizingMode identifies which of the mutually exclusive order sizing fields
// is set.
type SizingMode int

const (
	SizingUnset SizingMode = iota
	SizingBaseAmount
	SizingQuoteAmount
	SizingExactBaseOutput
	SizingExactQuoteOutput
)

// ExternalOrder is a caller's intent to trade against the venue's internal
// order book. Exactly one of the four sizing fields must be set.
//
// An order is treated as immutable once Validate has accepted it: Validate
// normalizes the mint addresses in place and every later use reads only.
type ExternalOrder struct {
	QuoteMint string    `json:"quote_mint"`
	BaseMint  string    `json:"base_mint"`
	Side      OrderSide `json:"side"`

	// Sizing modes, mutually exclusive. base_amount / quote_amount size the
	// input; the exact_*_output fields require the matched amount in that
	// token to equal the target exactly (fees are still withheld from the
	// receive side).
	BaseAmount       *Amount `json:"base_amount,omitempty"`
	QuoteAmount      *Amount `json:"quote_amount,omitempty"`
	ExactBaseOutput  *Amount `json:"exact_base_output,omitempty"`
	ExactQuoteOutput *Amount `json:"exact_quote_output,omitempty"`

	// MinFillSize is the minimum acceptable fill, denominated in the same
	// token as the sizing field. Zero means any fill is acceptable.
	MinFillSize Amount `json:"min_fill_size"`
}

// Validate checks the order's structural invariants and normalizes the mint
// addresses. It returns a *ValidationError naming the failing invariant.
func (o *ExternalOrder) Validate() error {
	if !hexAddressRegex.MatchString(o.BaseMint) {
		return newValidationError(InvariantOrderFields, fmt.Sprintf("base_mint %q is not a hex address", o.BaseMint))
	}
	if !hexAddressRegex.MatchString(o.QuoteMint) {
		return newValidationError(InvariantOrderFields, fmt.Sprintf("quote_mint %q is not a hex address", o.QuoteMint))
	}
	o.BaseMint = NormalizeMint(o.BaseMint)
	o.QuoteMint = NormalizeMint(o.QuoteMint)
	if o.BaseMint == o.QuoteMint {
		return newValidationError(InvariantOrderFields, "base_mint and quote_mint must differ")
	}
	if !o.Side.Valid() {
		return newValidationError(InvariantOrderFields, fmt.Sprintf("side must be %q or %q", Buy, Sell))
	}

	set := 0
	for _, amt := range []*Amount{o.BaseAmount, o.QuoteAmount, o.ExactBaseOutput, o.ExactQuoteOutput} {
		if amt == nil {
			continue
		}
		if amt.IsNegative() {
			return newValidationError(InvariantOrderFields, "order amounts must be non-negative")
		}
		if amt.IsSet() {
			set++
		}
	}
	if set == 0 {
		return newValidationError(InvariantOrderFields,
			"one of base_amount, quote_amount, exact_base_output, exact_quote_output must be set")
	}
	if set > 1 {
		return newValidationError(InvariantOrderFields,
			"only one of base_amount, quote_amount, exact_base_output, exact_quote_output may be set")
	}

	if o.MinFillSize.IsNegative() {
		return newValidationError(InvariantOrderFields, "min_fill_size must be non-negative")
	}
	_, sized := o.SizedAmount()
	if o.MinFillSize.IsSet() && o.MinFillSize.Cmp(sized) > 0 {
		return newValidationError(InvariantOrderFields,
			fmt.Sprintf("min_fill_size %s exceeds requested amount %s", o.MinFillSize, sized))
	}
	return nil
}

// SizedAmount returns the active sizing mode and its amount.
func (o *ExternalOrder) SizedAmount() (SizingMode, Amount) {
	switch {
	case o.BaseAmount != nil && o.BaseAmount.IsSet():
		return SizingBaseAmount, *o.BaseAmount
	case o.QuoteAmount != nil && o.QuoteAmount.IsSet():
		return SizingQuoteAmount, *o.QuoteAmount
	case o.ExactBaseOutput != nil && o.ExactBaseOutput.IsSet():
		return SizingExactBaseOutput, *o.ExactBaseOutput
	case o.ExactQuoteOutput != nil && o.ExactQuoteOutput.IsSet():
		return SizingExactQuoteOutput, *o.ExactQuoteOutput
	}
	return SizingUnset, ZeroAmount()
}

// SendMint returns the mint the caller pays for this order.
func (o *ExternalOrder) SendMint() string {
	if o.Side == Sell {
		return o.BaseMint
	}
	return o.QuoteMint
}

// ReceiveMint returns the mint the caller receives for this order.
func (o *ExternalOrder) ReceiveMint() string {
	if o.Side == Sell {
		return o.QuoteMint
	}
	return o.BaseMint
}
