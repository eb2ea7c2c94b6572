// Package decoder turns incoming request payloads into typed request and
// observation objects. KVP decoders consume the query parameter map of a GET
// binding; XML decoders consume parsed documents. All decoders implement
// coding.Decoder and are dispatched through the codec registry.
package decoder

import (
	"strconv"
	"strings"

	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
	"github.com/geomatico/52n-sos-4.0-sub001/request"
)

// kvp gives case-insensitive access to KVP parameter names.
type kvp map[string]string

func asKVP(payload any) (kvp, error) {
	raw, ok := payload.(map[string]string)
	if !ok {
		return nil, errors.NewNoApplicableCode(nil, "kvp decoder expects a parameter map, got %T", payload)
	}
	params := make(kvp, len(raw))
	for k, v := range raw {
		params[strings.ToLower(k)] = v
	}
	return params, nil
}

func (p kvp) get(name string) string {
	return p[strings.ToLower(name)]
}

func (p kvp) list(name string) []string {
	v := p.get(name)
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// GetCapabilitiesKVPDecoder decodes GetCapabilities KVP requests.
type GetCapabilitiesKVPDecoder struct{}

// DecoderKeys implements coding.Decoder. GetCapabilities is registered for
// both versions and for requests without a version.
func (GetCapabilitiesKVPDecoder) DecoderKeys() []coding.DecoderKey {
	keys := coding.OperationDecoderKeys(ogc.ServiceSOS, ogc.Version20, ogc.OperationGetCapabilities)
	keys = append(keys, coding.OperationDecoderKeys(ogc.ServiceSOS, ogc.Version10, ogc.OperationGetCapabilities)...)
	keys = append(keys, coding.OperationDecoderKeys(ogc.ServiceSOS, "", ogc.OperationGetCapabilities)...)
	return keys
}

// Decode implements coding.Decoder.
func (GetCapabilitiesKVPDecoder) Decode(payload any) (any, error) {
	params, err := asKVP(payload)
	if err != nil {
		return nil, err
	}
	req := &request.GetCapabilities{
		Service:        params.get("service"),
		AcceptVersions: params.list("acceptVersions"),
		Sections:       params.list("sections"),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// GetObservationKVPDecoder decodes GetObservation KVP requests.
type GetObservationKVPDecoder struct{}

// DecoderKeys implements coding.Decoder.
func (GetObservationKVPDecoder) DecoderKeys() []coding.DecoderKey {
	return coding.OperationDecoderKeys(ogc.ServiceSOS, ogc.Version20, ogc.OperationGetObservation)
}

// Decode implements coding.Decoder. The temporal filter accepts an instant or
// a period; a bare instant becomes the period covering the implied precision,
// so "2013-06" filters the whole month.
func (GetObservationKVPDecoder) Decode(payload any) (any, error) {
	params, err := asKVP(payload)
	if err != nil {
		return nil, err
	}
	req := &request.GetObservation{
		Service:            params.get("service"),
		Version:            params.get("version"),
		Offerings:          params.list("offering"),
		Procedures:         params.list("procedure"),
		ObservedProperties: params.list("observedProperty"),
		Features:           params.list("featureOfInterest"),
		ResponseFormat:     params.get("responseFormat"),
	}
	if raw := params.get("temporalFilter"); raw != "" {
		period, err := parseTemporalFilter(raw)
		if err != nil {
			return nil, err
		}
		req.TemporalFilter = period
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// parseTemporalFilter parses the value part of a KVP temporal filter.
// A "name,value" form drops the value reference name first.
func parseTemporalFilter(raw string) (*gml.Period, error) {
	if name, rest, ok := strings.Cut(raw, ","); ok && !strings.Contains(name, "/") && looksLikeValueReference(name) {
		raw = rest
	}
	if start, end, ok := strings.Cut(raw, "/"); ok {
		startTime, err := gml.ParseISO(start)
		if err != nil {
			return nil, errors.NewInvalidParameterValue("temporalFilter", raw)
		}
		endTime, err := gml.ParseISO(end)
		if err != nil {
			return nil, errors.NewInvalidParameterValue("temporalFilter", raw)
		}
		period := gml.NewPeriod(startTime, gml.EndOfRequestedPeriod(endTime, len(end)))
		return &period, nil
	}
	start, err := gml.ParseISO(raw)
	if err != nil {
		return nil, errors.NewInvalidParameterValue("temporalFilter", raw)
	}
	period := gml.NewPeriod(start, gml.EndOfRequestedPeriod(start, len(raw)))
	return &period, nil
}

// looksLikeValueReference tells a value reference like
// "om:phenomenonTime" apart from a time token like "2013-06-01".
func looksLikeValueReference(s string) bool {
	if _, err := strconv.Atoi(s[:min(4, len(s))]); err == nil {
		return false
	}
	return true
}

// DescribeSensorKVPDecoder decodes DescribeSensor KVP requests.
type DescribeSensorKVPDecoder struct{}

// DecoderKeys implements coding.Decoder.
func (DescribeSensorKVPDecoder) DecoderKeys() []coding.DecoderKey {
	return coding.OperationDecoderKeys(ogc.ServiceSOS, ogc.Version20, ogc.OperationDescribeSensor)
}

// Decode implements coding.Decoder.
func (DescribeSensorKVPDecoder) Decode(payload any) (any, error) {
	params, err := asKVP(payload)
	if err != nil {
		return nil, err
	}
	req := &request.DescribeSensor{
		Service:           params.get("service"),
		Version:           params.get("version"),
		Procedure:         params.get("procedure"),
		DescriptionFormat: params.get("procedureDescriptionFormat"),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
