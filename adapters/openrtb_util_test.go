package adapters

import (
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlattice/adlattice-server/util/ptrutil"
)

func TestMakeOpenRTBGeneric(t *testing.T) {
	req := &AdapterRequest{BidderCode: "appnexus"}
	ctx := &PreBidRequestContext{
		TID:     "tid1",
		Timeout: 500,
		Domain:  "example.com",
		Referer: "http://www.example.com/page",
	}
	imps := []openrtb2.Imp{{ID: "imp1"}}

	ortbReq, err := MakeOpenRTBGeneric(req, ctx, imps)
	require.NoError(t, err)

	assert.Equal(t, "tid1", ortbReq.ID)
	assert.Equal(t, int64(1), ortbReq.AT)
	assert.Equal(t, int64(500), ortbReq.TMax)
	assert.Equal(t, imps, ortbReq.Imp)
	require.NotNil(t, ortbReq.Site)
	assert.Equal(t, "example.com", ortbReq.Site.Domain)
	assert.Equal(t, "http://www.example.com/page", ortbReq.Site.Page)
	require.NotNil(t, ortbReq.Source)
	assert.Equal(t, ptrutil.ToPtr[int8](1), ortbReq.Source.FD)
	assert.Equal(t, "tid1", ortbReq.Source.TID)
	assert.Nil(t, ortbReq.Imp[0].Secure)
}

func TestMakeOpenRTBGenericSecure(t *testing.T) {
	ctx := &PreBidRequestContext{TID: "tid1", Secure: 1}

	ortbReq, err := MakeOpenRTBGeneric(&AdapterRequest{}, ctx, []openrtb2.Imp{{ID: "imp1"}, {ID: "imp2"}})
	require.NoError(t, err)

	assert.Equal(t, ptrutil.ToPtr[int8](1), ortbReq.Imp[0].Secure)
	assert.Equal(t, ptrutil.ToPtr[int8](1), ortbReq.Imp[1].Secure)
}

func TestMakeOpenRTBGenericApp(t *testing.T) {
	app := &openrtb2.App{ID: "appId"}
	ctx := &PreBidRequestContext{TID: "tid1", App: app, Domain: "example.com"}

	ortbReq, err := MakeOpenRTBGeneric(&AdapterRequest{}, ctx, []openrtb2.Imp{{ID: "imp1"}})
	require.NoError(t, err)

	assert.Equal(t, app, ortbReq.App)
	assert.Nil(t, ortbReq.Site)
}

func TestMakeOpenRTBGenericNoImps(t *testing.T) {
	_, err := MakeOpenRTBGeneric(&AdapterRequest{}, &PreBidRequestContext{}, nil)
	assert.EqualError(t, err, "openRTB bids need at least one Imp")
}

func TestLookupAdUnit(t *testing.T) {
	req := &AdapterRequest{
		AdUnits: []AdUnitBid{{Code: "adUnitCode1"}, {Code: "adUnitCode2"}},
	}

	unit := LookupAdUnit(req, "adUnitCode2")
	require.NotNil(t, unit)
	assert.Equal(t, "adUnitCode2", unit.Code)

	assert.Nil(t, LookupAdUnit(req, "unknown"))
}

func TestParseMediaType(t *testing.T) {
	banner, err := ParseMediaType("banner")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeBanner, banner)

	video, err := ParseMediaType("video")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeVideo, video)

	_, err = ParseMediaType("native")
	assert.EqualError(t, err, `Invalid MediaType "native"`)
}
