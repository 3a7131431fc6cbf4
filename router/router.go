package router

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"

	"github.com/adlattice/adlattice-server/openrtb_ext"
)

// New sets up the operational endpoints this core serves itself. The auction
// endpoint and its fan-out live in the orchestrating service, not here.
func New(paramsValidator openrtb_ext.BidderParamValidator, schemaDirectory string) (*httprouter.Router, error) {
	r := httprouter.New()

	paramsHandler, err := NewJsonDirectoryServer(schemaDirectory, paramsValidator)
	if err != nil {
		return nil, err
	}
	r.GET("/bidders/params", paramsHandler)
	r.GET("/status", Status)

	return r, nil
}

// Status serves a trivial liveness probe.
func Status(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}

// NewJsonDirectoryServer serves the bidder param schemas as one JSON object,
// keyed by bidder name. The files are slurped into memory first, since
// they're small and it minimizes request latency.
func NewJsonDirectoryServer(schemaDirectory string, validator openrtb_ext.BidderParamValidator) (httprouter.Handle, error) {
	files, err := os.ReadDir(schemaDirectory)
	if err != nil {
		return nil, err
	}

	data := make(map[string]json.RawMessage, len(files))
	for _, file := range files {
		bidder := strings.TrimSuffix(file.Name(), ".json")
		bidderName, isValid := openrtb_ext.GetBidderName(bidder)
		if !isValid {
			glog.Fatalf("Schema exists for an unknown bidder: %s", bidder)
		}
		data[bidder] = json.RawMessage(validator.Schema(bidderName))
	}

	response, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Add("Content-Type", "application/json")
		w.Write(response)
	}, nil
}
