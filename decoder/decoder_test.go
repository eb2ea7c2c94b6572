package decoder

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
	"github.com/geomatico/52n-sos-4.0-sub001/request"
)

func newTestRegistry(t *testing.T) *coding.Registry {
	t.Helper()
	registry := coding.NewRegistry()
	require.NoError(t, Register(registry))
	return registry
}

func TestDecodeGetObservationKVP(t *testing.T) {
	registry := newTestRegistry(t)
	params := map[string]string{
		"service":          "SOS",
		"version":          "2.0.0",
		"offering":         "http://example.org/offering/1",
		"observedProperty": "temperature,pressure",
		"procedure":        "http://example.org/procedure/ws2500",
	}

	decoded, err := coding.DecodeOperationRequest(registry, ogc.ServiceSOS, ogc.Version20, ogc.OperationGetObservation, params)
	require.NoError(t, err)
	req, ok := decoded.(*request.GetObservation)
	require.True(t, ok)
	assert.Equal(t, []string{"http://example.org/offering/1"}, req.Offerings)
	assert.Equal(t, []string{"temperature", "pressure"}, req.ObservedProperties)
	assert.Nil(t, req.TemporalFilter)
}

func TestDecodeGetObservationTemporalFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "explicit period",
			filter:    "2013-06-01T00:00:00Z/2013-06-02T00:00:00Z",
			wantStart: time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2013, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "month instant expands to month period",
			filter:    "om:phenomenonTime,2013-06",
			wantStart: time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2013, 6, 30, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "day instant expands to day period",
			filter:    "2013-06-01",
			wantStart: time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2013, 6, 1, 23, 59, 59, 999000000, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := parseTemporalFilter(tt.filter)
			require.NoError(t, err)
			require.NotNil(t, period)
			assert.True(t, period.Start.Equal(tt.wantStart), "start %s", period.Start)
			assert.True(t, period.End.Equal(tt.wantEnd), "end %s", period.End)
		})
	}
}

func TestDecodeGetObservationCollectsAllFailures(t *testing.T) {
	registry := newTestRegistry(t)
	params := map[string]string{}

	_, err := coding.DecodeOperationRequest(registry, ogc.ServiceSOS, ogc.Version20, ogc.OperationGetObservation, params)
	require.Error(t, err)
	var report *errors.Report
	require.ErrorAs(t, err, &report)
	// both the missing service and the missing version are reported at once
	require.Len(t, report.Exceptions, 2)
	assert.Equal(t, errors.CodeMissingParameterValue, report.Exceptions[0].Code)
	assert.Equal(t, "service", report.Exceptions[0].Locator)
	assert.Equal(t, "version", report.Exceptions[1].Locator)
}

func TestDecodeGetCapabilitiesWithoutVersion(t *testing.T) {
	registry := newTestRegistry(t)
	params := map[string]string{"service": "SOS", "acceptversions": "2.0.0"}

	decoded, err := coding.DecodeOperationRequest(registry, ogc.ServiceSOS, "", ogc.OperationGetCapabilities, params)
	require.NoError(t, err)
	req, ok := decoded.(*request.GetCapabilities)
	require.True(t, ok)
	assert.Equal(t, []string{"2.0.0"}, req.AcceptVersions)
}

func TestDecodeUnknownOperation(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := coding.DecodeOperationRequest(registry, ogc.ServiceSOS, ogc.Version20, "GetResult", nil)
	require.Error(t, err)
	var miss *errors.NoDecoderForKeyError
	assert.ErrorAs(t, err, &miss)
}

const observationXML = `<?xml version="1.0" encoding="UTF-8"?>
<!-- measurement upload -->
<om:OM_Observation xmlns:om="http://www.opengis.net/om/2.0"
    xmlns:gml="http://www.opengis.net/gml/3.2"
    xmlns:xlink="http://www.w3.org/1999/xlink" gml:id="o1">
  <gml:identifier codeSpace="http://example.org">obs-2013-001</gml:identifier>
  <om:type xlink:href="http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_Measurement"/>
  <om:phenomenonTime>
    <gml:TimeInstant gml:id="pt1">
      <gml:timePosition>2013-06-01T12:00:00Z</gml:timePosition>
    </gml:TimeInstant>
  </om:phenomenonTime>
  <om:resultTime xlink:href="#pt1"/>
  <om:procedure xlink:href="http://example.org/procedure/ws2500"/>
  <om:observedProperty xlink:href="temperature"/>
  <om:featureOfInterest xlink:href="http://example.org/feature/con-terra" xlink:title="con terra"/>
  <om:result xsi:type="gml:MeasureType" uom="Cel"
      xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">21.5</om:result>
</om:OM_Observation>`

func TestDecodeObservationXML(t *testing.T) {
	registry := newTestRegistry(t)

	decoded, err := coding.DecodeXMLString(registry, observationXML)
	require.NoError(t, err)
	observation, ok := decoded.(*om.Observation)
	require.True(t, ok)

	assert.Equal(t, "obs-2013-001", observation.Identifier.Value)
	assert.Equal(t, om.ObsTypeMeasurement, observation.Constellation.ObservationType)
	assert.Equal(t, "http://example.org/procedure/ws2500", observation.Constellation.Procedure.Identifier)
	assert.Equal(t, "temperature", observation.Constellation.ObservableProperty.Identifier)
	assert.Equal(t, "http://example.org/feature/con-terra", observation.Constellation.FeatureOfInterest.Identifier.Value)
	assert.Equal(t, "con terra", observation.Constellation.FeatureOfInterest.Name)

	value, ok := observation.Value.(*om.SingleObservationValue)
	require.True(t, ok)
	assert.Equal(t, om.KindQuantity, value.Value.Kind)
	assert.Equal(t, 21.5, value.Value.Quantity)
	assert.Equal(t, "Cel", value.Value.Unit)
	assert.True(t, gml.TimeEqual(gml.NewInstant(time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC)), value.PhenomenonTime()))
}

func TestDecodeObservationXMLBadResult(t *testing.T) {
	registry := newTestRegistry(t)
	bad := strings.Replace(observationXML, ">21.5<", ">twentyone<", 1)

	_, err := coding.DecodeXMLString(registry, bad)
	require.Error(t, err)
	var coded *errors.CodedException
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errors.CodeInvalidParameterValue, coded.Code)
	assert.Equal(t, "result", coded.Locator)
}

func TestDecodeMalformedXML(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := coding.DecodeXMLString(registry, "<om:OM_Observation")
	require.Error(t, err)
	var decodeErr *errors.XMLDecodingError
	assert.ErrorAs(t, err, &decodeErr)
}
