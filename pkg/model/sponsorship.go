package model

import "github.com/shopspring/decimal"

// pricePrecision is the number of fractional digits kept when a price is
// recomputed after an in-kind rebate. Rounding is always downward, the same
// direction as quote validation.
const pricePrecision = 18

// InKindToReceiver reports whether the rebate is paid in the buy-side token
// directly to the receiver, i.e. it improves the effective trade price.
// Native-ETH rebates and rebates routed to an explicit refund address flow
// out of band and leave the quoted economics untouched.
func (g *GasSponsorshipInfo) InKindToReceiver() bool {
	return g != nil && !g.RefundNativeEth && g.RefundAddress == ""
}

// AdjustQuote returns a copy of q with the in-kind gas rebate folded into
// the receive amount and the price recomputed accordingly. When the rebate
// is not in-kind to the receiver (or info is nil) the copy is unmodified.
func AdjustQuote(q Quote, info *GasSponsorshipInfo) Quote {
	if !info.InKindToReceiver() || !info.RefundAmount.IsSet() {
		return q
	}

	q.Receive.Amount = q.Receive.Amount.Add(info.RefundAmount)

	price, err := q.Price.Decimal()
	if err != nil || !price.IsPositive() {
		// Leave an unparseable price alone; validation will reject it.
		return q
	}
	q.Price.Price = recomputePrice(q.Order.Side, q.Send.Amount, q.Receive.Amount).String()
	return q
}

// AdjustBundle returns a copy of b with the in-kind rebate folded into the
// receive amount. The settlement transaction is untouched: the rebate
// contract pays the refund, the calldata already routes through it.
func AdjustBundle(b MatchBundle, info *GasSponsorshipInfo) MatchBundle {
	if !info.InKindToReceiver() || !info.RefundAmount.IsSet() {
		return b
	}
	b.Receive.Amount = b.Receive.Amount.Add(info.RefundAmount)
	return b
}

// recomputePrice derives the quote-per-base price implied by the adjusted
// receive amount against the unchanged send amount, rounded down.
func recomputePrice(side OrderSide, send, receive Amount) decimal.Decimal {
	sendDec := send.Decimal()
	recvDec := receive.Decimal()
	if sendDec.IsZero() || recvDec.IsZero() {
		return decimal.Zero
	}
	if side == Sell {
		// send is base, receive is quote.
		return recvDec.DivRound(sendDec, pricePrecision+2).RoundDown(pricePrecision)
	}
	// Buy: send is quote, receive is base.
	return sendDec.DivRound(recvDec, pricePrecision+2).RoundDown(pricePrecision)
}

// EffectiveEconomics returns the quote's economics with any in-kind rebate
// applied. The signed quote itself is never modified; the relayer's
// signature covers the original content.
func (sq *SignedQuote) EffectiveEconomics() Quote {
	if sq.GasSponsorshipInfo == nil {
		return sq.Quote
	}
	return AdjustQuote(sq.Quote, &sq.GasSponsorshipInfo.GasSponsorshipInfo)
}

// EffectiveBundle returns the bundle with any in-kind rebate applied. The
// bundle's numbers are authoritative over the quote's: the gas estimate may
// have moved between quoting and assembly.
func (r *MatchResponse) EffectiveBundle() MatchBundle {
	if !r.GasSponsored || r.GasSponsorshipInfo == nil {
		return r.MatchBundle
	}
	return AdjustBundle(r.MatchBundle, r.GasSponsorshipInfo)
}
