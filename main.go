package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/adlattice/adlattice-server/config"
	"github.com/adlattice/adlattice-server/exchange"
	"github.com/adlattice/adlattice-server/openrtb_ext"
	"github.com/adlattice/adlattice-server/router"
)

const configFileName = "adlattice"
const schemaDirectory = "./static/bidder-params"

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	if err := serve(cfg); err != nil {
		glog.Exitf("adlattice-server failed: %v", err)
	}
}

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

// serve wires the validation core together and exposes the operational
// endpoints. The auction orchestrator consumes ortb.RequestValidator,
// schain.Resolver and the adapter map through the public packages; it is a
// separate service and not part of this binary.
func serve(cfg *config.Configuration) error {
	paramsValidator, err := openrtb_ext.NewBidderParamsValidator(schemaDirectory)
	if err != nil {
		return err
	}

	adapterMap, err := exchange.NewAdapterMap(cfg)
	if err != nil {
		return err
	}
	glog.Infof("Loaded %d bidder adapters", len(adapterMap))

	r, err := router.New(paramsValidator, schemaDirectory)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	glog.Infof("Listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
