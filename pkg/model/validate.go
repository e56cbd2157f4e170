package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Invariant names attached to validation failures. The caller is about to
// authorize an irreversible on-chain action, so each failure names exactly
// what broke rather than a generic message.
const (
	InvariantOrderFields     = "order_fields"
	InvariantMintPair        = "mint_pair"
	InvariantPositiveAmounts = "positive_amounts"
	InvariantFeeSign         = "fee_sign"
	InvariantFeePrice        = "fee_price_consistency"
	InvariantFillBounds      = "fill_bounds"
)

// ValidationError reports a quote or order that fails a structural
// invariant. It is fatal for the lifecycle instance: a fresh quote is
// required, retrying with the same data cannot succeed.
type ValidationError struct {
	Invariant string
	Detail    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed [%s]: %s", e.Invariant, e.Detail)
}

func newValidationError(invariant, detail string) *ValidationError {
	return &ValidationError{Invariant: invariant, Detail: detail}
}

// divPrecision is the working precision for price division before flooring.
const divPrecision = 32

// GrossOutput returns the pre-fee proceeds of spending send at price for
// the given side: quote units for a sell (send × price), base units for a
// buy (send ÷ price), floored to an integer amount in both directions.
func GrossOutput(side OrderSide, send Amount, price decimal.Decimal) Amount {
	s := send.Decimal()
	var out decimal.Decimal
	if side == Sell {
		out = s.Mul(price).Floor()
	} else {
		out = s.DivRound(price, divPrecision).Floor()
	}
	return NewAmountFromBigInt(out.BigInt())
}

// ValidateQuote checks a signed quote against the invariants that must hold
// before it is safe to assemble. The checks are pure: calling twice on the
// same unmodified quote yields the same result.
func ValidateQuote(sq *SignedQuote) error {
	if sq == nil {
		return newValidationError(InvariantOrderFields, "quote is nil")
	}
	return validateQuote(&sq.Quote)
}

func validateQuote(q *Quote) error {
	order := q.Order
	if err := checkMintPair(q, &order); err != nil {
		return err
	}

	if !q.Send.Amount.IsPositive() || !q.Receive.Amount.IsPositive() {
		return newValidationError(InvariantPositiveAmounts,
			fmt.Sprintf("send %s and receive %s must both be positive", q.Send.Amount, q.Receive.Amount))
	}
	if q.Fees.RelayerFee.IsNegative() || q.Fees.ProtocolFee.IsNegative() {
		return newValidationError(InvariantFeeSign,
			fmt.Sprintf("fees must be non-negative, got relayer %s protocol %s",
				q.Fees.RelayerFee, q.Fees.ProtocolFee))
	}

	if err := checkFeePrice(q); err != nil {
		return err
	}
	return checkFillBounds(q, &order)
}

// checkMintPair verifies send/receive mints are the {base, quote} pair
// oriented by the order side, and that the match result echoes the order's
// mints.
func checkMintPair(q *Quote, order *ExternalOrder) error {
	base := NormalizeMint(order.BaseMint)
	quote := NormalizeMint(order.QuoteMint)
	send := NormalizeMint(q.Send.Mint)
	recv := NormalizeMint(q.Receive.Mint)

	wantSend, wantRecv := quote, base
	if order.Side == Sell {
		wantSend, wantRecv = base, quote
	}
	if send != wantSend || recv != wantRecv {
		return newValidationError(InvariantMintPair,
			fmt.Sprintf("side %s expects send %s / receive %s, got send %s / receive %s",
				order.Side, wantSend, wantRecv, send, recv))
	}
	if NormalizeMint(q.MatchResult.BaseMint) != base || NormalizeMint(q.MatchResult.QuoteMint) != quote {
		return newValidationError(InvariantMintPair, "match result mints do not echo the order mints")
	}
	return nil
}

// checkFeePrice verifies the stated economics reconcile: the receive amount
// equals the gross proceeds of the send amount at the quoted price, floored,
// minus both fees, within one unit of integer rounding.
func checkFeePrice(q *Quote) error {
	price, err := q.Price.Decimal()
	if err != nil {
		return newValidationError(InvariantFeePrice, fmt.Sprintf("unparseable price %q", q.Price.Price))
	}
	if !price.IsPositive() {
		return newValidationError(InvariantFeePrice, fmt.Sprintf("price %s must be positive", price))
	}

	gross := GrossOutput(q.Order.Side, q.Send.Amount, price)
	expected := gross.Decimal().Sub(q.Fees.Total().Decimal())
	diff := expected.Sub(q.Receive.Amount.Decimal()).Abs()
	if diff.GreaterThan(decimal.NewFromInt(1)) {
		return newValidationError(InvariantFeePrice,
			fmt.Sprintf("fee-adjusted receive amount does not match quoted price within tolerance: expected %s, got %s",
				expected, q.Receive.Amount))
	}
	return nil
}

// checkFillBounds verifies the matched amount, in the order's sized token,
// sits between min_fill_size and the requested amount. Exact-output orders
// must match exactly.
func checkFillBounds(q *Quote, order *ExternalOrder) error {
	mode, requested := order.SizedAmount()

	var matched Amount
	switch mode {
	case SizingBaseAmount, SizingExactBaseOutput:
		matched = q.MatchResult.BaseAmount
	case SizingQuoteAmount, SizingExactQuoteOutput:
		matched = q.MatchResult.QuoteAmount
	default:
		return newValidationError(InvariantOrderFields, "quoted order has no sizing field set")
	}

	switch mode {
	case SizingExactBaseOutput, SizingExactQuoteOutput:
		if matched.Cmp(requested) != 0 {
			return newValidationError(InvariantFillBounds,
				fmt.Sprintf("exact-output order requested %s, matched %s", requested, matched))
		}
	default:
		if matched.Cmp(requested) > 0 {
			return newValidationError(InvariantFillBounds,
				fmt.Sprintf("matched amount %s exceeds requested %s", matched, requested))
		}
		if order.MinFillSize.IsSet() && matched.Cmp(order.MinFillSize) < 0 {
			return newValidationError(InvariantFillBounds,
				fmt.Sprintf("matched amount %s is below min_fill_size %s", matched, order.MinFillSize))
		}
	}
	return nil
}
