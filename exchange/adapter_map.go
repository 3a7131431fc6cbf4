package exchange

import (
	"fmt"

	"github.com/adlattice/adlattice-server/adapters"
	"github.com/adlattice/adlattice-server/adapters/appnexus"
	"github.com/adlattice/adlattice-server/config"
	"github.com/adlattice/adlattice-server/openrtb_ext"
)

type adapterBuilder func(cfg config.Adapter) (adapters.Adapter, error)

// The dispatch table from bidder name to adapter constructor. New bidders
// register here.
var builders = map[openrtb_ext.BidderName]adapterBuilder{
	openrtb_ext.BidderAppnexus: appnexus.Builder,
}

// NewAdapterMap builds the bidder-name-to-adapter dispatch table once at
// startup. Lookups for unknown or disabled bidders simply miss; the
// orchestrator treats a miss as "bidder not participating", not an error.
func NewAdapterMap(cfg *config.Configuration) (map[openrtb_ext.BidderName]adapters.Adapter, error) {
	adapterMap := make(map[openrtb_ext.BidderName]adapters.Adapter, len(builders))
	for _, name := range openrtb_ext.CoreBidderNames() {
		adapterCfg, ok := cfg.Adapters[string(name)]
		if !ok || adapterCfg.Disabled {
			continue
		}

		build, ok := builders[name]
		if !ok {
			return nil, fmt.Errorf("no adapter registered for bidder %s", name)
		}

		bidder, err := build(adapterCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build adapter for bidder %s: %v", name, err)
		}
		adapterMap[name] = bidder
	}
	return adapterMap, nil
}
