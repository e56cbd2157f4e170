package mockrelayer

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/renegade-fi/external-match-client/pkg/model"
)

// Fee rates withheld from the receive side of every match.
var (
	relayerFeeRate  = decimal.RequireFromString("0.0004")
	protocolFeeRate = decimal.RequireFromString("0.0002")
)

// sponsorshipRebateRate is a flat stand-in for the gas estimate: in-kind
// rebates are 5 bps of the receive amount.
var sponsorshipRebateRate = decimal.RequireFromString("0.0005")

// nativeRefundWei is the fixed native-ETH rebate granted when a refund
// address is supplied.
var nativeRefundWei = model.NewAmount(2_000_000_000_000_000) // 0.002 ETH

// listing is one side of available internal liquidity for a pair.
type listing struct {
	price   decimal.Decimal // quote per base midpoint
	maxBase model.Amount    // base-denominated depth
}

// Book is the sandbox's stand-in for the venue's internal order book: a
// static table of pair midpoints and depth, matched deterministically.
type Book struct {
	mu       sync.RWMutex
	listings map[string]listing
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{listings: make(map[string]listing)}
}

func pairKey(baseMint, quoteMint string) string {
	return model.NormalizeMint(baseMint) + "/" + model.NormalizeMint(quoteMint)
}

// AddListing registers liquidity for a pair at a midpoint price.
func (b *Book) AddListing(baseMint, quoteMint string, price decimal.Decimal, maxBase model.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listings[pairKey(baseMint, quoteMint)] = listing{price: price, maxBase: maxBase}
}

func (b *Book) lookup(baseMint, quoteMint string) (listing, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	l, ok := b.listings[pairKey(baseMint, quoteMint)]
	return l, ok
}

// MatchOrder matches an order against the book, producing a quote whose
// economics reconcile under client-side validation. A false result means no
// internal liquidity crosses the order (unknown pair, depth below the
// minimum fill, or an exact size the book cannot hit).
func (b *Book) MatchOrder(order *model.ExternalOrder, now time.Time) (*model.Quote, bool) {
	l, ok := b.lookup(order.BaseMint, order.QuoteMint)
	if !ok {
		return nil, false
	}

	mode, sized := order.SizedAmount()
	send, price, ok := matchSend(order.Side, mode, sized, l)
	if !ok || !send.IsPositive() {
		return nil, false
	}

	gross := model.GrossOutput(order.Side, send, price)
	if !gross.IsPositive() {
		return nil, false
	}

	relayerFee := floorMul(gross, relayerFeeRate)
	protocolFee := floorMul(gross, protocolFeeRate)
	receive := gross.Sub(relayerFee).Sub(protocolFee)

	var baseAmt, quoteAmt model.Amount
	if order.Side == model.Sell {
		baseAmt, quoteAmt = send, gross
	} else {
		baseAmt, quoteAmt = gross, send
	}

	// Exact-output orders must hit the size exactly; everything else is a
	// partial fill bounded below by min_fill_size.
	matched := quoteAmt
	if mode == model.SizingBaseAmount || mode == model.SizingExactBaseOutput {
		matched = baseAmt
	}
	switch mode {
	case model.SizingExactBaseOutput, model.SizingExactQuoteOutput:
		if matched.Cmp(sized) != 0 {
			return nil, false
		}
	default:
		if order.MinFillSize.IsSet() && matched.Cmp(order.MinFillSize) < 0 {
			return nil, false
		}
	}

	q := &model.Quote{
		Order: *order,
		MatchResult: model.MatchResult{
			QuoteMint:   order.QuoteMint,
			BaseMint:    order.BaseMint,
			QuoteAmount: quoteAmt,
			BaseAmount:  baseAmt,
			Direction:   order.Side,
		},
		Fees: model.FeeTake{
			RelayerFee:  relayerFee,
			ProtocolFee: protocolFee,
		},
		Send:      model.AssetTransfer{Mint: order.SendMint(), Amount: send},
		Receive:   model.AssetTransfer{Mint: order.ReceiveMint(), Amount: receive},
		Price:     model.TimestampedPrice{Price: price.String(), Timestamp: now.UnixMilli()},
		Timestamp: now.UnixMilli(),
	}
	return q, true
}

// matchSend derives the gross send amount and the match price for a sizing
// mode, capping at the listed depth.
func matchSend(side model.OrderSide, mode model.SizingMode, sized model.Amount, l listing) (model.Amount, decimal.Decimal, bool) {
	price := l.price
	switch {
	case side == model.Sell && (mode == model.SizingBaseAmount || mode == model.SizingExactBaseOutput):
		// Send base directly; exact base for a sell is trivially exact.
		send := capAmount(sized, l.maxBase, mode)
		return send, price, send.IsSet()

	case side == model.Sell && mode == model.SizingQuoteAmount:
		send := capAmount(floorDiv(sized, price), l.maxBase, mode)
		return send, price, send.IsSet()

	case side == model.Sell && mode == model.SizingExactQuoteOutput:
		return exactOutputSend(sized, price, l.maxBase, true)

	case side == model.Buy && (mode == model.SizingQuoteAmount || mode == model.SizingExactQuoteOutput):
		// Send quote directly; cap via the base-equivalent depth.
		baseEq := floorDiv(sized, price)
		if baseEq.Cmp(l.maxBase) > 0 {
			if mode == model.SizingExactQuoteOutput {
				return model.ZeroAmount(), price, false
			}
			return floorMul(l.maxBase, price), price, true
		}
		return sized, price, sized.IsSet()

	case side == model.Buy && mode == model.SizingBaseAmount:
		base := capAmount(sized, l.maxBase, mode)
		return floorMul(base, price), price, base.IsSet()

	case side == model.Buy && mode == model.SizingExactBaseOutput:
		return exactOutputSend(sized, price, l.maxBase, false)
	}
	return model.ZeroAmount(), price, false
}

// exactPricePrecision is the fractional precision of a price adjusted to hit
// an exact output. One ulp at this precision times any realistic send amount
// stays well under one base unit, so the floor lands exactly on target.
const exactPricePrecision = 30

// exactOutputSend derives a send amount and price pair whose floored
// conversion hits target exactly. The price is the ratio implied by the
// reference price's send, nudged one ulp in the caller-favorable direction so
// integer flooring cannot undershoot. sellQuoteOut is true when selling base
// for an exact quote output.
func exactOutputSend(target model.Amount, refPrice decimal.Decimal, maxBase model.Amount, sellQuoteOut bool) (model.Amount, decimal.Decimal, bool) {
	targetDec := target.Decimal()
	ulp := decimal.New(1, -exactPricePrecision)

	if sellQuoteOut {
		// floor(send × price) == target needs price ≥ target/send.
		send := ceilDiv(target, refPrice)
		if send.Cmp(maxBase) > 0 {
			return model.ZeroAmount(), refPrice, false
		}
		price := targetDec.DivRound(send.Decimal(), exactPricePrecision).Add(ulp)
		if model.GrossOutput(model.Sell, send, price).Cmp(target) != 0 {
			return model.ZeroAmount(), refPrice, false
		}
		return send, price, true
	}

	// Buy with an exact base output: floor(send ÷ price) == target needs
	// price ≤ send/target.
	if target.Cmp(maxBase) > 0 {
		return model.ZeroAmount(), refPrice, false
	}
	send := ceilMulDec(targetDec, refPrice)
	price := send.Decimal().DivRound(targetDec, exactPricePrecision).Sub(ulp)
	if !price.IsPositive() {
		return model.ZeroAmount(), refPrice, false
	}
	if model.GrossOutput(model.Buy, send, price).Cmp(target) != 0 {
		return model.ZeroAmount(), refPrice, false
	}
	return send, price, true
}

func capAmount(a, cap model.Amount, mode model.SizingMode) model.Amount {
	if a.Cmp(cap) <= 0 {
		return a
	}
	// Exact sizes cannot be partially filled.
	if mode == model.SizingExactBaseOutput || mode == model.SizingExactQuoteOutput {
		return model.ZeroAmount()
	}
	return cap
}

func floorMul(a model.Amount, rate decimal.Decimal) model.Amount {
	return model.NewAmountFromBigInt(a.Decimal().Mul(rate).Floor().BigInt())
}

func floorDiv(a model.Amount, rate decimal.Decimal) model.Amount {
	return model.NewAmountFromBigInt(a.Decimal().DivRound(rate, 32).Floor().BigInt())
}

func ceilDiv(a model.Amount, rate decimal.Decimal) model.Amount {
	return model.NewAmountFromBigInt(a.Decimal().DivRound(rate, 32).Ceil().BigInt())
}

func ceilMulDec(a, rate decimal.Decimal) model.Amount {
	return model.NewAmountFromBigInt(a.Mul(rate).Ceil().BigInt())
}
