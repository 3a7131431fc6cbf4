package adapters

import (
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/adlattice/adlattice-server/errortypes"
	"github.com/adlattice/adlattice-server/util/ptrutil"
)

// MakeOpenRTBGeneric assembles the request-level skeleton of an outbound
// OpenRTB request from the shared auction context, around the impressions the
// adapter already built. Adapters remain responsible for imp-level content
// and their own extension payloads.
func MakeOpenRTBGeneric(req *AdapterRequest, ctx *PreBidRequestContext, imps []openrtb2.Imp) (*openrtb2.BidRequest, error) {
	if len(imps) == 0 {
		return nil, &errortypes.BadInput{
			Message: "openRTB bids need at least one Imp",
		}
	}

	ortbReq := &openrtb2.BidRequest{
		ID:     ctx.TID,
		Imp:    imps,
		AT:     1,
		TMax:   ctx.Timeout,
		App:    ctx.App,
		Device: ctx.Device,
		User:   ctx.User,
		Source: &openrtb2.Source{
			FD:     ptrutil.ToPtr[int8](1), // upstream, aka header bidding
			TID:    ctx.TID,
			SChain: ctx.SChain,
		},
	}

	if ctx.Secure > 0 {
		for i := range ortbReq.Imp {
			ortbReq.Imp[i].Secure = ptrutil.ToPtr[int8](1)
		}
	}

	if ctx.App == nil {
		ortbReq.Site = &openrtb2.Site{
			Domain: ctx.Domain,
			Page:   ctx.Referer,
		}
	}

	return ortbReq, nil
}

// LookupAdUnit finds the ad unit whose code matches a returned impression id.
func LookupAdUnit(req *AdapterRequest, code string) *AdUnitBid {
	for i := range req.AdUnits {
		if req.AdUnits[i].Code == code {
			return &req.AdUnits[i]
		}
	}
	return nil
}
