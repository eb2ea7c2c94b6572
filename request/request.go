// Package request defines the decoded service request types. Decoders
// produce them; the operation layer consumes them after validation.
package request

import (
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
)

// GetCapabilities asks for the service metadata document.
type GetCapabilities struct {
	Service        string
	AcceptVersions []string
	Sections       []string
}

// Validate collects all parameter failures into one report instead of
// failing on the first bad value.
func (r *GetCapabilities) Validate() error {
	var errs []error
	if r.Service == "" {
		errs = append(errs, errors.NewMissingParameterValue("service"))
	} else if r.Service != ogc.ServiceSOS {
		errs = append(errs, errors.NewInvalidParameterValue("service", r.Service))
	}
	for _, v := range r.AcceptVersions {
		if v != ogc.Version20 && v != ogc.Version10 {
			errs = append(errs, errors.NewInvalidParameterValue("acceptVersions", v))
		}
	}
	if report := errors.CollectCoded(ogc.Version20, errs); report != nil {
		return report
	}
	return nil
}

// GetObservation asks for observations filtered by the named dimensions.
// Empty filter slices mean unrestricted.
type GetObservation struct {
	Service            string
	Version            string
	Offerings          []string
	Procedures         []string
	ObservedProperties []string
	Features           []string
	TemporalFilter     *gml.Period
	ResponseFormat     string
}

// Validate collects all parameter failures into one report.
func (r *GetObservation) Validate() error {
	var errs []error
	if r.Service == "" {
		errs = append(errs, errors.NewMissingParameterValue("service"))
	} else if r.Service != ogc.ServiceSOS {
		errs = append(errs, errors.NewInvalidParameterValue("service", r.Service))
	}
	if r.Version == "" {
		errs = append(errs, errors.NewMissingParameterValue("version"))
	} else if r.Version != ogc.Version20 {
		errs = append(errs, errors.NewInvalidParameterValue("version", r.Version))
	}
	if report := errors.CollectCoded(ogc.Version20, errs); report != nil {
		return report
	}
	return nil
}

// DescribeSensor asks for the description of one procedure.
type DescribeSensor struct {
	Service           string
	Version           string
	Procedure         string
	DescriptionFormat string
}

// Validate collects all parameter failures into one report.
func (r *DescribeSensor) Validate() error {
	var errs []error
	if r.Service == "" {
		errs = append(errs, errors.NewMissingParameterValue("service"))
	}
	if r.Version == "" {
		errs = append(errs, errors.NewMissingParameterValue("version"))
	}
	if r.Procedure == "" {
		errs = append(errs, errors.NewMissingParameterValue("procedure"))
	}
	if report := errors.CollectCoded(ogc.Version20, errs); report != nil {
		return report
	}
	return nil
}
