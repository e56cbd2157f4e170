package model

import (
	"time"

	"github.com/shopspring/decimal"
)

//
// ────────────────────────────────────────────────
//   Quote types (relayer → client)
// ────────────────────────────────────────────────
//

// AssetTransfer is a single-token transfer leg of a match.
type AssetTransfer struct {
	Mint   string `json:"mint"`
	Amount Amount `json:"amount"`
}

// TimestampedPrice is the quoted price (quote token per base token) as a
// decimal string, with the millisecond timestamp at which it was sampled.
type TimestampedPrice struct {
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// NewTimestampedPrice stamps the given price with the current time.
func NewTimestampedPrice(price decimal.Decimal) TimestampedPrice {
	return TimestampedPrice{
		Price:     price.String(),
		Timestamp: time.Now().UnixMilli(),
	}
}

// Decimal parses the price string.
func (p TimestampedPrice) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Price)
}

// MatchResult is the matched amounts for an external match.
type MatchResult struct {
	QuoteMint   string    `json:"quote_mint"`
	BaseMint    string    `json:"base_mint"`
	QuoteAmount Amount    `json:"quote_amount"`
	BaseAmount  Amount    `json:"base_amount"`
	Direction   OrderSide `json:"direction"`
}

// FeeTake is the fee breakdown withheld from the receive side of a match.
type FeeTake struct {
	RelayerFee  Amount `json:"relayer_fee"`
	ProtocolFee Amount `json:"protocol_fee"`
}

// Total returns relayer_fee + protocol_fee.
func (f FeeTake) Total() Amount {
	return f.RelayerFee.Add(f.ProtocolFee)
}

// Quote is the venue's offer for an external order. Receive is net of fees;
// send is gross (no fees withheld from it).
type Quote struct {
	Order       ExternalOrder    `json:"order"`
	MatchResult MatchResult      `json:"match_result"`
	Fees        FeeTake          `json:"fees"`
	Send        AssetTransfer    `json:"send"`
	Receive     AssetTransfer    `json:"receive"`
	Price       TimestampedPrice `json:"price"`
	Timestamp   int64            `json:"timestamp"`
}

// SignedQuote is a quote plus the relayer's signature over its content. The
// signature authenticates the quote for later assembly, so the embedded
// quote must never be mutated; sponsorship-adjusted economics are exposed on
// a copy via EffectiveEconomics.
type SignedQuote struct {
	Quote     Quote  `json:"quote"`
	Signature string `json:"signature"`

	// GasSponsorshipInfo is set when the relayer granted sponsorship for
	// this quote. It is signed separately and echoed back on assembly.
	GasSponsorshipInfo *SignedGasSponsorshipInfo `json:"gas_sponsorship_info,omitempty"`
}

//
// ────────────────────────────────────────────────
//   Gas sponsorship
// ────────────────────────────────────────────────
//

// GasSponsorshipInfo describes a gas rebate granted by the venue.
type GasSponsorshipInfo struct {
	// RefundAmount is the rebate, denominated in the buy-side token for
	// in-kind refunds or in wei for native-ETH refunds.
	RefundAmount Amount `json:"refund_amount"`
	// RefundNativeEth is true when the rebate is paid in native ETH rather
	// than in-kind.
	RefundNativeEth bool `json:"refund_native_eth"`
	// RefundAddress, when set, receives the rebate out of band instead of
	// the receiver.
	RefundAddress string `json:"refund_address,omitempty"`
}

// SignedGasSponsorshipInfo pairs sponsorship terms with the relayer's
// signature over them.
type SignedGasSponsorshipInfo struct {
	GasSponsorshipInfo GasSponsorshipInfo `json:"gas_sponsorship_info"`
	Signature          string             `json:"signature"`
}

//
// ────────────────────────────────────────────────
//   Bundle types (assembly → settlement)
// ────────────────────────────────────────────────
//

// SettlementTransaction is the on-chain transaction settling a match. It is
// opaque calldata: the client forwards it verbatim and never constructs or
// signs it.
type SettlementTransaction struct {
	TxType string `json:"tx_type"`
	To     string `json:"to"`
	Data   string `json:"data"`
	Value  string `json:"value"`
}

// MatchBundle is the settlement-ready artifact produced by assembly.
type MatchBundle struct {
	MatchResult  MatchResult           `json:"match_result"`
	Fees         FeeTake               `json:"fees"`
	Receive      AssetTransfer         `json:"receive"`
	Send         AssetTransfer         `json:"send"`
	SettlementTx SettlementTransaction `json:"settlement_tx"`
}

// MatchResponse is the relayer's response to an assemble or direct-match
// request.
type MatchResponse struct {
	MatchBundle MatchBundle `json:"match_bundle"`
	// GasSponsored is true when the bundle is routed through the gas rebate
	// contract.
	GasSponsored       bool                `json:"is_sponsored"`
	GasSponsorshipInfo *GasSponsorshipInfo `json:"gas_sponsorship_info,omitempty"`
}

//
// ────────────────────────────────────────────────
//   Wire envelopes (client → relayer)
// ────────────────────────────────────────────────
//

// QuoteRequest is the body of POST /v0/matching-engine/quote.
type QuoteRequest struct {
	ExternalOrder *ExternalOrder `json:"external_order"`
}

// QuoteResponse is the body of a successful quote request.
type QuoteResponse struct {
	SignedQuote        SignedQuote               `json:"signed_quote"`
	GasSponsorshipInfo *SignedGasSponsorshipInfo `json:"gas_sponsorship_info,omitempty"`
}

// AssembleMatchRequest is the body of
// POST /v0/matching-engine/assemble-external-match.
type AssembleMatchRequest struct {
	DoGasEstimation bool           `json:"do_gas_estimation"`
	ReceiverAddress string         `json:"receiver_address,omitempty"`
	SignedQuote     *SignedQuote   `json:"signed_quote"`
	UpdatedOrder    *ExternalOrder `json:"updated_order,omitempty"`
}

// ExternalMatchRequest is the body of
// POST /v0/matching-engine/request-external-match.
type ExternalMatchRequest struct {
	DoGasEstimation bool           `json:"do_gas_estimation"`
	ReceiverAddress string         `json:"receiver_address,omitempty"`
	ExternalOrder   *ExternalOrder `json:"external_order"`
}
