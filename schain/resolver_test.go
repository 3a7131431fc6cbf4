package schain

import (
	"encoding/json"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlattice/adlattice-server/openrtb_ext"
	"github.com/adlattice/adlattice-server/util/ptrutil"
)

func TestResolveForBidderWithCatchAll(t *testing.T) {
	specificChain := openrtb2.SupplyChain{
		Ver:      "ver",
		Complete: 1,
		Nodes: []openrtb2.SupplyChainNode{
			{ASI: "asi", SID: "sid", HP: ptrutil.ToPtr(int8(1)), RID: "rid", Name: "name", Domain: "domain"},
		},
	}
	generalChain := openrtb2.SupplyChain{
		Ver:      "t",
		Complete: 1,
		Nodes: []openrtb2.SupplyChainNode{
			{ASI: "t", HP: ptrutil.ToPtr(int8(0)), RID: "a", Domain: "ads"},
		},
	}

	req := givenRequestWithSChains(t,
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder1", "bidder2"}, SChain: specificChain},
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"*"}, SChain: generalChain},
	)

	resolver := NewResolver("")

	assert.Equal(t, &specificChain, resolver.ResolveForBidder("bidder1", req))
	assert.Equal(t, &specificChain, resolver.ResolveForBidder("bidder2", req))
	assert.Equal(t, &generalChain, resolver.ResolveForBidder("bidder3", req))
}

func TestResolveForBidderAbsentAndNoCatchAll(t *testing.T) {
	req := givenRequestWithSChains(t,
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder1"}, SChain: openrtb2.SupplyChain{Ver: "ver"}},
	)

	resolver := NewResolver("")

	assert.Nil(t, resolver.ResolveForBidder("bidder2", req))
}

func TestResolveForBidderIgnoresDuplicateDeclarations(t *testing.T) {
	req := givenRequestWithSChains(t,
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder"}, SChain: openrtb2.SupplyChain{Ver: "ver1"}},
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder"}, SChain: openrtb2.SupplyChain{Ver: "ver2"}},
	)

	resolver := NewResolver("")

	assert.Nil(t, resolver.ResolveForBidder("bidder", req))
}

func TestResolveForBidderIgnoresDuplicatesRegardlessOfOrder(t *testing.T) {
	req := givenRequestWithSChains(t,
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder"}, SChain: openrtb2.SupplyChain{Ver: "ver2"}},
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder"}, SChain: openrtb2.SupplyChain{Ver: "ver1"}},
		&openrtb_ext.ExtRequestPrebidSChain{Bidders: []string{"bidder"}, SChain: openrtb2.SupplyChain{Ver: "ver3"}},
	)

	resolver := NewResolver("")

	assert.Nil(t, resolver.ResolveForBidder("bidder", req))
}

func TestResolveForBidderAppendsHostNode(t *testing.T) {
	declaredNode := openrtb2.SupplyChainNode{
		ASI: "asi", SID: "sid", HP: ptrutil.ToPtr(int8(1)), RID: "rid", Name: "name", Domain: "domain",
	}
	req := givenRequestWithSChains(t, &openrtb_ext.ExtRequestPrebidSChain{
		Bidders: []string{"bidder"},
		SChain:  openrtb2.SupplyChain{Ver: "ver", Complete: 1, Nodes: []openrtb2.SupplyChainNode{declaredNode}},
	})

	resolver := NewResolver(`{"asi": "hostcompany.com", "sid": "00001"}`)

	expected := &openrtb2.SupplyChain{
		Ver:      "ver",
		Complete: 1,
		Nodes: []openrtb2.SupplyChainNode{
			declaredNode,
			{ASI: "hostcompany.com", SID: "00001"},
		},
	}
	assert.Equal(t, expected, resolver.ResolveForBidder("bidder", req))
}

func TestResolveForBidderSynthesizesHostOnlyChain(t *testing.T) {
	resolver := NewResolver(`{"asi": "hostcompany.com", "sid": "00001"}`)

	expected := &openrtb2.SupplyChain{
		Nodes: []openrtb2.SupplyChainNode{
			{ASI: "hostcompany.com", SID: "00001"},
		},
	}
	assert.Equal(t, expected, resolver.ResolveForBidder("bidder", &openrtb2.BidRequest{}))
}

func TestResolveForBidderDoesNotMutateDeclaredChain(t *testing.T) {
	req := givenRequestWithSChains(t, &openrtb_ext.ExtRequestPrebidSChain{
		Bidders: []string{"bidder"},
		SChain: openrtb2.SupplyChain{Ver: "ver", Nodes: []openrtb2.SupplyChainNode{
			{ASI: "asi", SID: "sid"},
		}},
	})
	extBefore := string(req.Ext)

	resolver := NewResolver(`{"asi": "hostcompany.com", "sid": "00001"}`)
	declared := resolver.ResolveForBidder("bidder", req)

	assert.Len(t, declared.Nodes, 2)
	assert.JSONEq(t, extBefore, string(req.Ext))
}

func TestNewResolverWithMalformedHostNode(t *testing.T) {
	resolver := NewResolver(`{"asi"`)

	assert.Nil(t, resolver.ResolveForBidder("bidder", &openrtb2.BidRequest{}))
}

func givenRequestWithSChains(t *testing.T, schains ...*openrtb_ext.ExtRequestPrebidSChain) *openrtb2.BidRequest {
	t.Helper()

	ext, err := json.Marshal(openrtb_ext.ExtRequest{
		Prebid: openrtb_ext.ExtRequestPrebid{SChains: schains},
	})
	require.NoError(t, err)

	return &openrtb2.BidRequest{Ext: ext}
}
