package client

import (
	"net/url"

	"github.com/renegade-fi/external-match-client/pkg/model"
)

// Query parameter names for gas sponsorship controls.
const (
	disableSponsorshipParam = "disable_gas_sponsorship"
	refundAddressParam      = "refund_address"
)

// RequestQuoteOptions configures a quote request. The zero value is the
// default policy: gas sponsorship enabled, in-kind, rebated to the receiver.
type RequestQuoteOptions struct {
	// DisableGasSponsorship opts out of sponsorship entirely.
	DisableGasSponsorship bool
	// RefundAddress, when set, receives the rebate instead of the receiver.
	// The quoted economics are then left unadjusted.
	RefundAddress string
}

// WithGasSponsorshipDisabled returns a copy with sponsorship disabled.
func (o RequestQuoteOptions) WithGasSponsorshipDisabled() RequestQuoteOptions {
	o.DisableGasSponsorship = true
	return o
}

// WithRefundAddress returns a copy directing the rebate to addr.
func (o RequestQuoteOptions) WithRefundAddress(addr string) RequestQuoteOptions {
	o.RefundAddress = addr
	return o
}

// Validate rejects contradictory combinations rather than silently ignoring
// them.
func (o RequestQuoteOptions) Validate() error {
	if o.DisableGasSponsorship && o.RefundAddress != "" {
		return &ConfigurationError{Reason: "refund address set but gas sponsorship disabled"}
	}
	return nil
}

func (o RequestQuoteOptions) queryString() string {
	return sponsorshipQuery(o.DisableGasSponsorship, o.RefundAddress)
}

// AssembleOptions configures quote assembly. The zero value assembles the
// quote as-is with the default sponsorship policy.
type AssembleOptions struct {
	// ReceiverAddress overrides where the receive-side tokens are sent.
	// Defaults (at the protocol level, not here) to the transaction
	// submitter.
	ReceiverAddress string
	// DoGasEstimation asks the relayer to estimate gas for the settlement
	// transaction.
	DoGasEstimation bool
	// UpdatedOrder replaces the order within the quoted match before
	// assembly, e.g. to shrink the fill. Mints and side must not change.
	UpdatedOrder *model.ExternalOrder
	// DisableGasSponsorship opts out of sponsorship entirely.
	DisableGasSponsorship bool
	// RefundAddress, when set, receives the rebate instead of the receiver.
	RefundAddress string
}

// WithReceiverAddress returns a copy with the receiver override set.
func (o AssembleOptions) WithReceiverAddress(addr string) AssembleOptions {
	o.ReceiverAddress = addr
	return o
}

// WithGasEstimation returns a copy with gas estimation toggled.
func (o AssembleOptions) WithGasEstimation(enabled bool) AssembleOptions {
	o.DoGasEstimation = enabled
	return o
}

// WithUpdatedOrder returns a copy carrying a replacement order.
func (o AssembleOptions) WithUpdatedOrder(order *model.ExternalOrder) AssembleOptions {
	o.UpdatedOrder = order
	return o
}

// WithGasSponsorshipDisabled returns a copy with sponsorship disabled.
func (o AssembleOptions) WithGasSponsorshipDisabled() AssembleOptions {
	o.DisableGasSponsorship = true
	return o
}

// WithRefundAddress returns a copy directing the rebate to addr.
func (o AssembleOptions) WithRefundAddress(addr string) AssembleOptions {
	o.RefundAddress = addr
	return o
}

// Validate rejects contradictory combinations.
func (o AssembleOptions) Validate() error {
	if o.DisableGasSponsorship && o.RefundAddress != "" {
		return &ConfigurationError{Reason: "refund address set but gas sponsorship disabled"}
	}
	if o.UpdatedOrder != nil {
		if err := o.UpdatedOrder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o AssembleOptions) queryString() string {
	return sponsorshipQuery(o.DisableGasSponsorship, o.RefundAddress)
}

func sponsorshipQuery(disabled bool, refundAddress string) string {
	q := url.Values{}
	if disabled {
		q.Set(disableSponsorshipParam, "true")
	} else {
		q.Set(disableSponsorshipParam, "false")
	}
	if refundAddress != "" {
		q.Set(refundAddressParam, refundAddress)
	}
	return "?" + q.Encode()
}
