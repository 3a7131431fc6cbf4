package adapters

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// MediaType tags the kind of creative an ad unit accepts or a bid carries.
type MediaType byte

const (
	MediaTypeBanner MediaType = iota
	MediaTypeVideo
)

// ParseMediaType converts the wire form ("banner", "video") of a media type.
func ParseMediaType(s string) (MediaType, error) {
	switch s {
	case "banner":
		return MediaTypeBanner, nil
	case "video":
		return MediaTypeVideo, nil
	default:
		return 0, fmt.Errorf("Invalid MediaType %q", s)
	}
}

func (t MediaType) String() string {
	switch t {
	case MediaTypeVideo:
		return "video"
	default:
		return "banner"
	}
}

// AdUnitBid is one ad unit's slice of the canonical auction request, as seen
// by a single bidder: the slot code, the sizes and media types it accepts,
// and that bidder's raw params payload.
type AdUnitBid struct {
	BidderCode string           `json:"bidder"`
	BidID      string           `json:"bid_id"`
	Code       string           `json:"code"`
	Sizes      []openrtb2.Format `json:"sizes"`
	TopFrame   int8             `json:"is_top_frame,omitempty"`
	Instl      int8             `json:"instl,omitempty"`
	MediaTypes []MediaType      `json:"-"`
	Video      *openrtb2.Video  `json:"video,omitempty"`
	Params     json.RawMessage  `json:"params,omitempty"`
}

// AdapterRequest is the unit of work handed to one adapter: every ad unit in
// it carries the same bidder code.
type AdapterRequest struct {
	BidderCode string
	AdUnits    []AdUnitBid
}

// PreBidRequestContext carries the request-level fields shared by every
// bidder in one auction. The orchestrator resolves the supply chain per
// bidder and attaches it here before calling the adapter.
type PreBidRequestContext struct {
	TID     string
	Timeout int64 // milliseconds
	Secure  int8

	Domain  string
	Referer string

	App    *openrtb2.App
	Device *openrtb2.Device
	User   *openrtb2.User
	SChain *openrtb2.SupplyChain
}

// RequestData packages together the fields needed to make one wire request.
type RequestData struct {
	Method  string
	Uri     string
	Body    []byte
	Headers http.Header
}

// DefaultHeaders returns the transport headers sent with every outbound
// OpenRTB request.
func DefaultHeaders() http.Header {
	headers := http.Header{}
	headers.Add("Content-Type", "application/json;charset=utf-8")
	headers.Add("Accept", "application/json")
	return headers
}

// BidderDebug captures one wire exchange for debug output.
type BidderDebug struct {
	RequestURI   string `json:"request_uri,omitempty"`
	RequestBody  string `json:"request_body,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
}

// ExchangeCall is one completed wire round trip with a bidder. It is one of
// exactly three variants (success, empty, error), constructed once by the
// orchestrator and never mutated.
type ExchangeCall struct {
	Request  *openrtb2.BidRequest
	Response *openrtb2.BidResponse
	Debug    *BidderDebug
	Err      error
}

// SuccessCall wraps a parsed wire response.
func SuccessCall(request *openrtb2.BidRequest, response *openrtb2.BidResponse, debug *BidderDebug) *ExchangeCall {
	return &ExchangeCall{Request: request, Response: response, Debug: debug}
}

// EmptyCall represents a round trip which produced no bids (e.g. HTTP 204).
func EmptyCall(debug *BidderDebug) *ExchangeCall {
	return &ExchangeCall{Debug: debug}
}

// ErrorCall represents a failed round trip.
func ErrorCall(err error, debug *BidderDebug) *ExchangeCall {
	return &ExchangeCall{Err: err, Debug: debug}
}

// Bid is an adapter's canonical output for one matched impression. Immutable
// once constructed.
type Bid struct {
	BidID      string    `json:"bid_id"`
	Code       string    `json:"code"`
	CreativeID string    `json:"creative_id,omitempty"`
	BidderCode string    `json:"bidder"`
	Price      float64   `json:"price"`
	Adm        string    `json:"adm,omitempty"`
	Width      int64     `json:"width,omitempty"`
	Height     int64     `json:"height,omitempty"`
	DealID     string    `json:"deal_id,omitempty"`
	MediaType  MediaType `json:"media_type"`
}

// Adapter translates between the canonical auction model and one demand
// partner's wire dialect. Implementations are stateless across calls; the
// orchestrator may invoke one instance concurrently for independent auctions
// and must isolate a fatal error from one bidder from its siblings.
type Adapter interface {
	// Name uniquely identifies this adapter. It cannot overlap with any other
	// adapter in the server.
	Name() string
	// MakeHTTPRequests translates the ad units for this bidder into wire
	// requests. A non-nil error is a fatal per-bidder fault.
	MakeHTTPRequests(req *AdapterRequest, ctx *PreBidRequestContext) ([]*RequestData, error)
	// ExtractBids normalizes one wire round trip into canonical bids. Empty
	// and no-bid responses yield a nil slice with no error; a malformed
	// response aborts extraction for the entire call.
	ExtractBids(req *AdapterRequest, call *ExchangeCall) ([]*Bid, error)
}
