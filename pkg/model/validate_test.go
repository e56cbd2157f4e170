package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSellQuote builds a self-consistent quote for the canonical sell:
// 0.01 WETH sent at 3000e6/1e18 quote-per-base, 30 USDC gross, 6bps fees.
func validSellQuote() *SignedQuote {
	order := sellOrder()
	if err := order.Validate(); err != nil {
		panic(err)
	}
	return &SignedQuote{
		Quote: Quote{
			Order: *order,
			MatchResult: MatchResult{
				QuoteMint:   order.QuoteMint,
				BaseMint:    order.BaseMint,
				QuoteAmount: NewAmount(30_000_000),
				BaseAmount:  NewAmount(10_000_000_000_000_000),
				Direction:   Sell,
			},
			Fees: FeeTake{
				RelayerFee:  NewAmount(12_000),
				ProtocolFee: NewAmount(6_000),
			},
			Send:    AssetTransfer{Mint: order.BaseMint, Amount: NewAmount(10_000_000_000_000_000)},
			Receive: AssetTransfer{Mint: order.QuoteMint, Amount: NewAmount(29_982_000)},
			Price:   TimestampedPrice{Price: "0.000000003", Timestamp: 1_700_000_000_000},
		},
		Signature: "c2lnbmF0dXJl",
	}
}

// validBuyQuote mirrors validSellQuote for the buy direction: 30 USDC sent,
// 0.01 WETH gross received.
func validBuyQuote() *SignedQuote {
	order := &ExternalOrder{
		BaseMint:    wethMint,
		QuoteMint:   usdcMint,
		Side:        Buy,
		QuoteAmount: amountPtr(30_000_000),
	}
	if err := order.Validate(); err != nil {
		panic(err)
	}
	return &SignedQuote{
		Quote: Quote{
			Order: *order,
			MatchResult: MatchResult{
				QuoteMint:   order.QuoteMint,
				BaseMint:    order.BaseMint,
				QuoteAmount: NewAmount(30_000_000),
				BaseAmount:  NewAmount(10_000_000_000_000_000),
				Direction:   Buy,
			},
			Fees: FeeTake{
				RelayerFee:  NewAmount(4_000_000_000_000),
				ProtocolFee: NewAmount(2_000_000_000_000),
			},
			Send:    AssetTransfer{Mint: order.QuoteMint, Amount: NewAmount(30_000_000)},
			Receive: AssetTransfer{Mint: order.BaseMint, Amount: NewAmount(9_994_000_000_000_000)},
			Price:   TimestampedPrice{Price: "0.000000003", Timestamp: 1_700_000_000_000},
		},
		Signature: "c2lnbmF0dXJl",
	}
}

func invariantOf(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	return verr.Invariant
}

func TestValidateQuote_ValidSell(t *testing.T) {
	assert.NoError(t, ValidateQuote(validSellQuote()))
}

func TestValidateQuote_ValidBuy(t *testing.T) {
	assert.NoError(t, ValidateQuote(validBuyQuote()))
}

func TestValidateQuote_Idempotent(t *testing.T) {
	sq := validSellQuote()
	require.NoError(t, ValidateQuote(sq))
	require.NoError(t, ValidateQuote(sq))
}

func TestValidateQuote_SellMintOrientation(t *testing.T) {
	sq := validSellQuote()
	// A sell must send base and receive quote.
	sq.Quote.Send.Mint, sq.Quote.Receive.Mint = sq.Quote.Receive.Mint, sq.Quote.Send.Mint

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantMintPair, invariantOf(t, err))
}

func TestValidateQuote_MatchResultMintsEchoOrder(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.MatchResult.BaseMint = usdcMint
	sq.Quote.MatchResult.QuoteMint = usdcMint

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantMintPair, invariantOf(t, err))
}

func TestValidateQuote_TamperedReceiveAmount(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.Receive.Amount = sq.Quote.Receive.Amount.Add(NewAmount(1_000))

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFeePrice, invariantOf(t, err))
	assert.Contains(t, err.Error(), "fee-adjusted receive amount")
}

func TestValidateQuote_RoundingToleranceIsOneUnit(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.Receive.Amount = sq.Quote.Receive.Amount.Sub(NewAmount(1))
	assert.NoError(t, ValidateQuote(sq))

	sq.Quote.Receive.Amount = sq.Quote.Receive.Amount.Sub(NewAmount(1))
	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFeePrice, invariantOf(t, err))
}

func TestValidateQuote_NonPositiveAmounts(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.Send.Amount = ZeroAmount()

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantPositiveAmounts, invariantOf(t, err))
}

func TestValidateQuote_NegativeFee(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.Fees.RelayerFee = NewAmount(-1)

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFeeSign, invariantOf(t, err))
}

func TestValidateQuote_MatchedAboveRequested(t *testing.T) {
	sq := validSellQuote()
	// Matched quote amount beyond the order's quote_amount sizing.
	sq.Quote.MatchResult.QuoteAmount = NewAmount(31_000_000)

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFillBounds, invariantOf(t, err))
}

func TestValidateQuote_MatchedBelowMinFill(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.MatchResult.QuoteAmount = NewAmount(1_000_000) // below min_fill 3_000_000

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFillBounds, invariantOf(t, err))
}

func TestValidateQuote_ExactOutputMustMatchExactly(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.Order.QuoteAmount = nil
	sq.Quote.Order.ExactQuoteOutput = amountPtr(30_000_001)
	sq.Quote.Order.MinFillSize = ZeroAmount()

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFillBounds, invariantOf(t, err))
	assert.Contains(t, err.Error(), "exact-output")
}

func TestValidateQuote_UnparseablePrice(t *testing.T) {
	sq := validSellQuote()
	sq.Quote.Price.Price = "three"

	err := ValidateQuote(sq)
	require.Error(t, err)
	assert.Equal(t, InvariantFeePrice, invariantOf(t, err))
}

func TestValidateQuote_NilQuote(t *testing.T) {
	assert.Error(t, ValidateQuote(nil))
}
