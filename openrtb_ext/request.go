package openrtb_ext

import (
	"github.com/prebid/openrtb/v20/openrtb2"
)

// ExtRequest defines the contract for request.ext
type ExtRequest struct {
	Prebid ExtRequestPrebid `json:"prebid"`
}

// ExtRequestPrebid defines the contract for request.ext.prebid
type ExtRequestPrebid struct {
	SChains []*ExtRequestPrebidSChain `json:"schains,omitempty"`
}

// ExtRequestPrebidSChain defines one supply-chain declaration inside
// request.ext.prebid.schains. A declaration whose Bidders list contains "*"
// is the catch-all and applies to any bidder without an explicit declaration.
type ExtRequestPrebidSChain struct {
	Bidders []string             `json:"bidders,omitempty"`
	SChain  openrtb2.SupplyChain `json:"schain"`
}

// ExtSource defines the contract for request.source.ext
type ExtSource struct {
	SChain *openrtb2.SupplyChain `json:"schain,omitempty"`
}
