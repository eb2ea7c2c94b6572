package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

func TestGetObservationValidate(t *testing.T) {
	valid := &GetObservation{Service: "SOS", Version: "2.0.0"}
	require.NoError(t, valid.Validate())

	wrongService := &GetObservation{Service: "WFS", Version: "2.0.0"}
	err := wrongService.Validate()
	require.Error(t, err)
	var report *errors.Report
	require.ErrorAs(t, err, &report)
	require.Len(t, report.Exceptions, 1)
	assert.Equal(t, errors.CodeInvalidParameterValue, report.Exceptions[0].Code)
	assert.Equal(t, "service", report.Exceptions[0].Locator)
}

func TestGetObservationValidateCollectsAll(t *testing.T) {
	err := (&GetObservation{}).Validate()
	require.Error(t, err)
	var report *errors.Report
	require.ErrorAs(t, err, &report)
	assert.Len(t, report.Exceptions, 2)
}

func TestGetCapabilitiesValidate(t *testing.T) {
	require.NoError(t, (&GetCapabilities{Service: "SOS"}).Validate())
	require.NoError(t, (&GetCapabilities{Service: "SOS", AcceptVersions: []string{"2.0.0", "1.0.0"}}).Validate())

	err := (&GetCapabilities{Service: "SOS", AcceptVersions: []string{"3.0.0"}}).Validate()
	require.Error(t, err)
	var report *errors.Report
	require.ErrorAs(t, err, &report)
	assert.Equal(t, "acceptVersions", report.Exceptions[0].Locator)
}

func TestDescribeSensorValidate(t *testing.T) {
	valid := &DescribeSensor{Service: "SOS", Version: "2.0.0", Procedure: "http://example.org/procedure/ws2500"}
	require.NoError(t, valid.Validate())

	err := (&DescribeSensor{Service: "SOS", Version: "2.0.0"}).Validate()
	require.Error(t, err)
	var report *errors.Report
	require.ErrorAs(t, err, &report)
	assert.Equal(t, "procedure", report.Exceptions[0].Locator)
}
