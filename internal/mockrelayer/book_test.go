package mockrelayer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renegade-fi/external-match-client/pkg/model"
)

const (
	wethMint = "0xc3414a7ef14aaaa9c4522dfc00a4e66e74e9c25a"
	usdcMint = "0xdf8d259c04020562717557f2b5a3cf28e92707d1"
)

var bookPrice = decimal.RequireFromString("0.000000003")

func amountPtr(v int64) *model.Amount {
	a := model.NewAmount(v)
	return &a
}

func mustAmount(t *testing.T, s string) model.Amount {
	t.Helper()
	a, err := model.NewAmountFromString(s)
	require.NoError(t, err)
	return a
}

func seededBook(t *testing.T) *Book {
	t.Helper()
	b := NewBook()
	b.AddListing(wethMint, usdcMint, bookPrice, mustAmount(t, "500000000000000000000"))
	return b
}

// Every quote the book produces must survive the client's validation: the
// client refuses to assemble anything that does not.
func TestMatchOrder_QuotesValidateAcrossSizingModes(t *testing.T) {
	book := seededBook(t)

	cases := []struct {
		name  string
		order model.ExternalOrder
	}{
		{"sell_base_amount", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
			BaseAmount: amountPtr(10_000_000_000_000_000),
		}},
		{"sell_quote_amount", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
			QuoteAmount: amountPtr(30_000_000),
		}},
		{"sell_exact_base_output", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
			ExactBaseOutput: amountPtr(10_000_000_000_000_000),
		}},
		{"sell_exact_quote_output", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
			ExactQuoteOutput: amountPtr(29_999_999),
		}},
		{"buy_base_amount", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Buy,
			BaseAmount: amountPtr(10_000_000_000_000_000),
		}},
		{"buy_quote_amount", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Buy,
			QuoteAmount: amountPtr(30_000_000),
		}},
		{"buy_exact_base_output", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Buy,
			ExactBaseOutput: amountPtr(9_999_999_999_999_999),
		}},
		{"buy_exact_quote_output", model.ExternalOrder{
			QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Buy,
			ExactQuoteOutput: amountPtr(30_000_000),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := tc.order
			require.NoError(t, order.Validate())

			quote, ok := book.MatchOrder(&order, time.Now())
			require.True(t, ok, "expected a match")

			sq := &model.SignedQuote{Quote: *quote, Signature: "c2ln"}
			assert.NoError(t, model.ValidateQuote(sq))
			assert.Equal(t, order.SendMint(), quote.Send.Mint)
			assert.Equal(t, order.ReceiveMint(), quote.Receive.Mint)
			assert.True(t, quote.Fees.Total().IsPositive())
		})
	}
}

func TestMatchOrder_SellEconomics(t *testing.T) {
	book := seededBook(t)
	order := model.ExternalOrder{
		QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
		BaseAmount: amountPtr(10_000_000_000_000_000),
	}
	require.NoError(t, order.Validate())

	quote, ok := book.MatchOrder(&order, time.Now())
	require.True(t, ok)

	// gross = 1e16 × 3e-9 = 30_000_000; fees 12_000 + 6_000.
	assert.Equal(t, "10000000000000000", quote.Send.Amount.String())
	assert.Equal(t, "12000", quote.Fees.RelayerFee.String())
	assert.Equal(t, "6000", quote.Fees.ProtocolFee.String())
	assert.Equal(t, "29982000", quote.Receive.Amount.String())
	assert.Equal(t, "0.000000003", quote.Price.Price)
}

func TestMatchOrder_UnknownPairIsNoMatch(t *testing.T) {
	book := seededBook(t)
	order := model.ExternalOrder{
		QuoteMint: wethMint, BaseMint: usdcMint, Side: model.Sell, // reversed pair, unlisted
		BaseAmount: amountPtr(1_000_000),
	}
	require.NoError(t, order.Validate())

	_, ok := book.MatchOrder(&order, time.Now())
	assert.False(t, ok)
}

func TestMatchOrder_DepthCapsTheFill(t *testing.T) {
	b := NewBook()
	b.AddListing(wethMint, usdcMint, bookPrice, model.NewAmount(1_000_000_000_000_000)) // 0.001 WETH depth

	order := model.ExternalOrder{
		QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
		BaseAmount: amountPtr(10_000_000_000_000_000),
	}
	require.NoError(t, order.Validate())

	quote, ok := b.MatchOrder(&order, time.Now())
	require.True(t, ok)
	assert.Equal(t, "1000000000000000", quote.Send.Amount.String())

	sq := &model.SignedQuote{Quote: *quote, Signature: "c2ln"}
	assert.NoError(t, model.ValidateQuote(sq))
}

func TestMatchOrder_MinFillNotMetIsNoMatch(t *testing.T) {
	b := NewBook()
	b.AddListing(wethMint, usdcMint, bookPrice, model.NewAmount(1_000_000_000_000_000))

	order := model.ExternalOrder{
		QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
		BaseAmount:  amountPtr(10_000_000_000_000_000),
		MinFillSize: model.NewAmount(5_000_000_000_000_000), // above available depth
	}
	require.NoError(t, order.Validate())

	_, ok := b.MatchOrder(&order, time.Now())
	assert.False(t, ok)
}

func TestMatchOrder_ExactOutputBeyondDepthIsNoMatch(t *testing.T) {
	b := NewBook()
	b.AddListing(wethMint, usdcMint, bookPrice, model.NewAmount(1_000_000_000_000_000))

	order := model.ExternalOrder{
		QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
		ExactBaseOutput: amountPtr(10_000_000_000_000_000),
	}
	require.NoError(t, order.Validate())

	_, ok := b.MatchOrder(&order, time.Now())
	assert.False(t, ok)
}

func TestMatchOrder_ExactQuoteOutputHitsExactly(t *testing.T) {
	book := seededBook(t)
	order := model.ExternalOrder{
		QuoteMint: usdcMint, BaseMint: wethMint, Side: model.Sell,
		ExactQuoteOutput: amountPtr(29_999_999), // not divisible by the book price
	}
	require.NoError(t, order.Validate())

	quote, ok := book.MatchOrder(&order, time.Now())
	require.True(t, ok)
	assert.Equal(t, "29999999", quote.MatchResult.QuoteAmount.String())
}
