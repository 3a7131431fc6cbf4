package appnexus

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/adlattice/adlattice-server/adapters"
	"github.com/adlattice/adlattice-server/config"
	"github.com/adlattice/adlattice-server/errortypes"
	"github.com/adlattice/adlattice-server/openrtb_ext"
	"github.com/adlattice/adlattice-server/util/ptrutil"
)

const bidderName = "appnexus"

type adapter struct {
	uri url.URL
}

// Builder builds a new instance of the AppNexus adapter for the given bidder with the given config.
func Builder(cfg config.Adapter) (adapters.Adapter, error) {
	uri, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	return &adapter{uri: *uri}, nil
}

func (a *adapter) Name() string {
	return bidderName
}

// impExtAppnexus defines the per-impression extension sent to AppNexus.
type impExtAppnexus struct {
	PlacementID       int    `json:"placement_id,omitempty"`
	Keywords          string `json:"keywords,omitempty"`
	TrafficSourceCode string `json:"traffic_source_code,omitempty"`
}

type impExt struct {
	Appnexus impExtAppnexus `json:"appnexus"`
}

// bidExtAppnexus defines the bid extension AppNexus returns. BidType is a
// pointer so a missing discriminator is distinguishable from banner (0).
type bidExtAppnexus struct {
	BidType *int `json:"bid_ad_type"`
}

type bidExt struct {
	Appnexus *bidExtAppnexus `json:"appnexus"`
}

func (a *adapter) MakeHTTPRequests(request *adapters.AdapterRequest, ctx *adapters.PreBidRequestContext) ([]*adapters.RequestData, error) {
	imps := make([]openrtb2.Imp, 0, len(request.AdUnits))
	var uniqueMemberID string

	for i := range request.AdUnits {
		unit := &request.AdUnits[i]

		params, err := parseParams(unit.Params)
		if err != nil {
			return nil, err
		}

		// The AppNexus API requires the member ID in the URL, so it must be
		// consistent across all the ad units of one batch.
		if params.Member != "" {
			if uniqueMemberID == "" {
				uniqueMemberID = params.Member
			} else if uniqueMemberID != params.Member {
				return nil, &errortypes.BadInput{
					Message: fmt.Sprintf("all request.imp[i].ext.appnexus.member params must match. Request contained member IDs %s and %s", uniqueMemberID, params.Member),
				}
			}
		}

		unitImps, err := makeImps(unit, params)
		if err != nil {
			return nil, err
		}
		imps = append(imps, unitImps...)
	}

	ortbReq, err := adapters.MakeOpenRTBGeneric(request, ctx, imps)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(ortbReq)
	if err != nil {
		return nil, err
	}

	requestURI := a.uri
	if uniqueMemberID != "" {
		requestURI = appendMemberID(requestURI, uniqueMemberID)
	}

	return []*adapters.RequestData{{
		Method:  "POST",
		Uri:     requestURI.String(),
		Body:    body,
		Headers: adapters.DefaultHeaders(),
	}}, nil
}

func (a *adapter) ExtractBids(request *adapters.AdapterRequest, call *adapters.ExchangeCall) ([]*adapters.Bid, error) {
	if call == nil || call.Response == nil || len(call.Response.SeatBid) == 0 {
		return nil, nil
	}

	var bids []*adapters.Bid
	for _, seatBid := range call.Response.SeatBid {
		for i := range seatBid.Bid {
			wireBid := &seatBid.Bid[i]

			unit := adapters.LookupAdUnit(request, wireBid.ImpID)
			if unit == nil {
				return nil, &errortypes.BadServerResponse{
					Message: fmt.Sprintf("Unknown ad unit code '%s'", wireBid.ImpID),
				}
			}

			mediaType, err := mediaTypeForBid(wireBid.Ext)
			if err != nil {
				return nil, err
			}

			bids = append(bids, &adapters.Bid{
				BidID:      unit.BidID,
				Code:       wireBid.ImpID,
				CreativeID: wireBid.CrID,
				BidderCode: request.BidderCode,
				Price:      wireBid.Price,
				Adm:        wireBid.AdM,
				Width:      wireBid.W,
				Height:     wireBid.H,
				DealID:     wireBid.DealID,
				MediaType:  mediaType,
			})
		}
	}

	return bids, nil
}

func parseParams(raw json.RawMessage) (*openrtb_ext.ExtImpAppnexus, error) {
	if len(raw) == 0 {
		return nil, &errortypes.BadInput{
			Message: "Appnexus params section is missing",
		}
	}

	var params openrtb_ext.ExtImpAppnexus
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &errortypes.BadInput{
			Message: err.Error(),
		}
	}

	if params.PlacementId == 0 && (params.InvCode == "" || params.Member == "") {
		return nil, &errortypes.BadInput{
			Message: "No placement or member+invcode provided",
		}
	}

	return &params, nil
}

// makeImps builds one impression per media type for the ad unit, all keyed by
// the ad unit code.
func makeImps(unit *adapters.AdUnitBid, params *openrtb_ext.ExtImpAppnexus) ([]openrtb2.Imp, error) {
	ext, err := json.Marshal(impExt{Appnexus: impExtAppnexus{
		PlacementID:       params.PlacementId,
		Keywords:          makeKeywords(params.Keywords),
		TrafficSourceCode: params.TrafficSourceCode,
	}})
	if err != nil {
		return nil, err
	}

	imps := make([]openrtb2.Imp, 0, len(unit.MediaTypes))
	for _, mediaType := range unit.MediaTypes {
		imp := openrtb2.Imp{
			ID:    unit.Code,
			Instl: unit.Instl,
			TagID: params.InvCode,
			Ext:   ext,
		}
		if params.Reserve > 0 {
			imp.BidFloor = params.Reserve // This will be broken for non-USD currency.
		}

		switch mediaType {
		case adapters.MediaTypeVideo:
			if unit.Video == nil || len(unit.Video.MIMEs) == 0 {
				return nil, &errortypes.BadInput{
					Message: "Invalid AdUnit: VIDEO media type with no video data",
				}
			}
			imp.Video = makeVideo(unit)
		case adapters.MediaTypeBanner:
			imp.Banner = makeBanner(unit, params.Position)
		default:
			continue
		}
		imps = append(imps, imp)
	}

	return imps, nil
}

func makeBanner(unit *adapters.AdUnitBid, position string) *openrtb2.Banner {
	banner := &openrtb2.Banner{
		Format:   unit.Sizes,
		TopFrame: unit.TopFrame,
	}
	if len(unit.Sizes) > 0 {
		banner.W = ptrutil.ToPtr(unit.Sizes[0].W)
		banner.H = ptrutil.ToPtr(unit.Sizes[0].H)
	}

	if position == "above" {
		banner.Pos = adcom1.PositionAboveFold.Ptr()
	} else if position == "below" {
		banner.Pos = adcom1.PositionBelowFold.Ptr()
	}
	return banner
}

func makeVideo(unit *adapters.AdUnitBid) *openrtb2.Video {
	video := ptrutil.Clone(unit.Video)
	if len(unit.Sizes) > 0 {
		video.W = ptrutil.ToPtr(unit.Sizes[0].W)
		video.H = ptrutil.ToPtr(unit.Sizes[0].H)
	}
	return video
}

// makeKeywords flattens the keyword key/values pairs into the comma-joined
// "key=value" form AppNexus expects. A key with no values is sent bare.
func makeKeywords(keywords []*openrtb_ext.ExtImpAppnexusKeyVal) string {
	kvs := make([]string, 0, len(keywords))
	for _, kv := range keywords {
		if len(kv.Values) == 0 {
			kvs = append(kvs, kv.Key)
			continue
		}
		for _, value := range kv.Values {
			kvs = append(kvs, fmt.Sprintf("%s=%s", kv.Key, value))
		}
	}
	return strings.Join(kvs, ",")
}

func mediaTypeForBid(ext json.RawMessage) (adapters.MediaType, error) {
	if len(ext) == 0 {
		return 0, &errortypes.BadServerResponse{
			Message: "bidResponse.bid.ext should be defined for appnexus",
		}
	}

	if _, dataType, _, _ := jsonparser.Get(ext, bidderName); dataType != jsonparser.Object {
		return 0, &errortypes.BadServerResponse{
			Message: "bidResponse.bid.ext.appnexus should be defined",
		}
	}

	var wireExt bidExt
	if err := json.Unmarshal(ext, &wireExt); err != nil {
		return 0, &errortypes.BadServerResponse{
			Message: err.Error(),
		}
	}
	if wireExt.Appnexus == nil || wireExt.Appnexus.BidType == nil {
		return 0, &errortypes.BadServerResponse{
			Message: "bidResponse.bid.ext.appnexus.bid_ad_type should be defined",
		}
	}

	switch *wireExt.Appnexus.BidType {
	case 0:
		return adapters.MediaTypeBanner, nil
	case 1:
		return adapters.MediaTypeVideo, nil
	default:
		return 0, &errortypes.BadServerResponse{
			Message: fmt.Sprintf("Unrecognized bid_ad_type in response from appnexus: %d", *wireExt.Appnexus.BidType),
		}
	}
}

func appendMemberID(uri url.URL, memberID string) url.URL {
	q := uri.Query()
	q.Set("member_id", memberID)
	uri.RawQuery = q.Encode()
	return uri
}
