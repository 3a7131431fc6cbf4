package schain

import (
	"encoding/json"

	"github.com/golang/glog"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/adlattice/adlattice-server/openrtb_ext"
)

const sChainWildCard = "*"

// Resolver selects the effective supply chain for one bidder from the
// request's declarations, appending the host company node when one is
// configured. It never mutates the request and never returns an error; a
// missing or ambiguous declaration resolves to nil.
type Resolver struct {
	hostNode *openrtb2.SupplyChainNode
}

// NewResolver builds a Resolver from the configured host node, given as a
// JSON object string like {"asi": "host.com", "sid": "00001"}. An empty or
// unparseable value leaves the resolver without a host node.
func NewResolver(hostNodeJSON string) *Resolver {
	if hostNodeJSON == "" {
		return &Resolver{}
	}

	var node openrtb2.SupplyChainNode
	if err := json.Unmarshal([]byte(hostNodeJSON), &node); err != nil {
		glog.Warningf("Invalid host schain node config, continuing without one: %v", err)
		return &Resolver{}
	}
	return &Resolver{hostNode: &node}
}

// ResolveForBidder returns the supply chain which should accompany the wire
// request to the named bidder, or nil when none applies.
//
// Explicit declarations beat the "*" catch-all. If a bidder is named by more
// than one explicit declaration the intent is ambiguous and the bidder
// resolves to nil rather than silently picking a side. When a host node is
// configured it is appended to a copy of the declared chain; with no declared
// chain at all, a chain holding only the host node is synthesized.
func (r *Resolver) ResolveForBidder(bidder string, req *openrtb2.BidRequest) *openrtb2.SupplyChain {
	return r.enrich(declaredChain(bidder, req))
}

func declaredChain(bidder string, req *openrtb2.BidRequest) *openrtb2.SupplyChain {
	schains := readDeclarations(req)

	var catchAll *openrtb2.SupplyChain
	chainsByBidder := make(map[string]*openrtb2.SupplyChain, len(schains))
	dropped := make(map[string]struct{})

	for _, declaration := range schains {
		if declaration == nil {
			continue
		}
		if containsWildCard(declaration.Bidders) {
			if catchAll == nil {
				catchAll = &declaration.SChain
			}
			continue
		}
		for _, name := range declaration.Bidders {
			if _, ambiguous := dropped[name]; ambiguous {
				continue
			}
			if _, seen := chainsByBidder[name]; seen {
				delete(chainsByBidder, name)
				dropped[name] = struct{}{}
				continue
			}
			chainsByBidder[name] = &declaration.SChain
		}
	}

	if chain, ok := chainsByBidder[bidder]; ok {
		return chain
	}
	if _, ambiguous := dropped[bidder]; ambiguous {
		return nil
	}
	return catchAll
}

func (r *Resolver) enrich(declared *openrtb2.SupplyChain) *openrtb2.SupplyChain {
	if r.hostNode == nil {
		return declared
	}

	if declared == nil {
		return &openrtb2.SupplyChain{
			Nodes: []openrtb2.SupplyChainNode{*r.hostNode},
		}
	}

	nodes := make([]openrtb2.SupplyChainNode, 0, len(declared.Nodes)+1)
	nodes = append(nodes, declared.Nodes...)
	nodes = append(nodes, *r.hostNode)

	resolved := *declared
	resolved.Nodes = nodes
	return &resolved
}

func readDeclarations(req *openrtb2.BidRequest) []*openrtb_ext.ExtRequestPrebidSChain {
	if req == nil || len(req.Ext) == 0 {
		return nil
	}

	var reqExt openrtb_ext.ExtRequest
	if err := json.Unmarshal(req.Ext, &reqExt); err != nil {
		glog.Warningf("Ignoring malformed request.ext while resolving schains: %v", err)
		return nil
	}
	return reqExt.Prebid.SChains
}

func containsWildCard(bidders []string) bool {
	for _, name := range bidders {
		if name == sChainWildCard {
			return true
		}
	}
	return false
}
