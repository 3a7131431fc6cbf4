package ortb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/adlattice/adlattice-server/openrtb_ext"
)

// RequestValidator checks an incoming auction request against the OpenRTB
// contract before any bidder is called. Validation stops at the first violated
// rule so callers get the earliest structural fault rather than a pile of
// derived ones.
type RequestValidator struct {
	paramsValidator openrtb_ext.BidderParamValidator
}

// NewRequestValidator returns a validator which delegates bidder param checks
// to the given BidderParamValidator.
func NewRequestValidator(paramsValidator openrtb_ext.BidderParamValidator) *RequestValidator {
	return &RequestValidator{
		paramsValidator: paramsValidator,
	}
}

// Validate checks the request. The returned result carries at most one
// message; callers must reject the whole request when HasErrors() is true.
func (v *RequestValidator) Validate(req *openrtb2.BidRequest) ValidationResult {
	if err := v.validate(req); err != nil {
		return errorResult(err)
	}
	return validResult()
}

func (v *RequestValidator) validate(req *openrtb2.BidRequest) error {
	if req.ID == "" {
		return errors.New("request missing required field: \"id\"")
	}

	if req.TMax < 0 {
		return fmt.Errorf("request.tmax must be nonnegative. Got %d", req.TMax)
	}

	if len(req.Imp) < 1 {
		return errors.New("request.imp must contain at least one element.")
	}

	for index := range req.Imp {
		if err := v.validateImp(&req.Imp[index], index); err != nil {
			return err
		}
	}

	if (req.Site == nil && req.App == nil) || (req.Site != nil && req.App != nil) {
		return errors.New("request.site or request.app must be defined, but not both.")
	}

	if err := validateSite(req.Site); err != nil {
		return err
	}

	return nil
}

func (v *RequestValidator) validateImp(imp *openrtb2.Imp, index int) error {
	if imp.ID == "" {
		return fmt.Errorf("request.imp[%d] missing required field: \"id\"", index)
	}

	if err := validateMetrics(imp.Metric, index); err != nil {
		return err
	}

	if imp.Banner == nil && imp.Video == nil && imp.Audio == nil && imp.Native == nil {
		return fmt.Errorf("request.imp[%d] must contain at least one of \"banner\", \"video\", \"audio\", or \"native\"", index)
	}

	if err := validateBanner(imp.Banner, index); err != nil {
		return err
	}

	if imp.Video != nil && len(imp.Video.MIMEs) < 1 {
		return fmt.Errorf("request.imp[%d].video.mimes must contain at least one supported MIME type", index)
	}

	if imp.Audio != nil && len(imp.Audio.MIMEs) < 1 {
		return fmt.Errorf("request.imp[%d].audio.mimes must contain at least one supported MIME type", index)
	}

	if imp.Native != nil && imp.Native.Request == "" {
		return fmt.Errorf("request.imp[%d].native.request must be a JSON encoded string conforming to the openrtb 1.2 Native spec", index)
	}

	if err := validatePmp(imp.PMP, index); err != nil {
		return err
	}

	return v.validateImpExt(imp.Ext, index)
}

func validateMetrics(metrics []openrtb2.Metric, impIndex int) error {
	for i := range metrics {
		if metrics[i].Type != "" {
			return fmt.Errorf("request.imp[%d].metric is not yet supported by adlattice-server. Support may be added in the future.", impIndex)
		}
	}
	return nil
}

func validateBanner(banner *openrtb2.Banner, impIndex int) error {
	if banner == nil {
		return nil
	}

	for fmtIndex := range banner.Format {
		if err := validateFormat(&banner.Format[fmtIndex], impIndex, fmtIndex); err != nil {
			return err
		}
	}
	return nil
}

func validateFormat(format *openrtb2.Format, impIndex int, formatIndex int) error {
	usesHW := format.W != 0 || format.H != 0
	usesRatios := format.WMin != 0 || format.WRatio != 0 || format.HRatio != 0
	if usesHW && usesRatios {
		return fmt.Errorf("Request imp[%d].banner.format[%d] should define *either* {w, h} *or* {wmin, wratio, hratio}, but not both. If both are valid, send two \"format\" objects in the request.", impIndex, formatIndex)
	}
	if !usesHW && !usesRatios {
		return fmt.Errorf("Request imp[%d].banner.format[%d] should define *either* {w, h} (for static size requirements) *or* {wmin, wratio, hratio} (for flexible sizes) to be non-zero.", impIndex, formatIndex)
	}
	if usesHW && (format.W == 0 || format.H == 0) {
		return fmt.Errorf("Request imp[%d].banner.format[%d] must define non-zero \"h\" and \"w\" properties.", impIndex, formatIndex)
	}
	if usesRatios && (format.WMin == 0 || format.WRatio == 0 || format.HRatio == 0) {
		return fmt.Errorf("Request imp[%d].banner.format[%d] must define non-zero \"wmin\", \"wratio\", and \"hratio\" properties.", impIndex, formatIndex)
	}
	return nil
}

func validatePmp(pmp *openrtb2.PMP, impIndex int) error {
	if pmp == nil {
		return nil
	}

	for dealIndex, deal := range pmp.Deals {
		if deal.ID == "" {
			return fmt.Errorf("request.imp[%d].pmp.deals[%d] missing required field: \"id\"", impIndex, dealIndex)
		}
	}
	return nil
}

func (v *RequestValidator) validateImpExt(ext json.RawMessage, impIndex int) error {
	var bidderExts map[string]json.RawMessage
	if len(ext) > 0 {
		if err := json.Unmarshal(ext, &bidderExts); err != nil {
			return err
		}
	}

	if len(bidderExts) < 1 {
		return fmt.Errorf("request.imp[%d].ext must contain at least one bidder", impIndex)
	}

	for bidder, params := range bidderExts {
		if bidder == "prebid" {
			continue
		}
		bidderName, isValid := openrtb_ext.GetBidderName(bidder)
		if !isValid {
			return fmt.Errorf("request.imp[%d].ext contains unknown bidder: %s", impIndex, bidder)
		}
		if err := v.paramsValidator.Validate(bidderName, params); err != nil {
			return fmt.Errorf("request.imp[%d].ext.%s failed validation.\n%v", impIndex, bidder, err)
		}
	}

	return nil
}

func validateSite(site *openrtb2.Site) error {
	if site == nil {
		return nil
	}

	if site.ID == "" && site.Page == "" {
		return errors.New("request.site should include at least one of request.site.id or request.site.page.")
	}
	return nil
}
