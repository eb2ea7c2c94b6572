package swecodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
	"github.com/geomatico/52n-sos-4.0-sub001/swe"
)

func testConstellation(property *om.ObservableProperty) *om.ObservationConstellation {
	return &om.ObservationConstellation{
		Procedure:          &om.Procedure{Identifier: "http://example.org/procedure/1"},
		ObservableProperty: property,
		FeatureOfInterest: &om.FeatureOfInterest{
			Identifier: gml.NewCodeWithAuthority("", "http://example.org/feature/1"),
		},
		ObservationType: om.ObsTypeSWEArrayObservation,
	}
}

func TestBuildDataArray_SingleValue(t *testing.T) {
	temp := om.NewObservableProperty("temperature", "")
	obs := &om.Observation{
		ObservationID:  "1",
		Constellation:  testConstellation(temp),
		NoDataValue:    "noData",
		TokenSeparator: ",",
		TupleSeparator: ";",
		Value: &om.SingleObservationValue{
			Time:  gml.NewInstant(time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC)),
			Value: om.NewQuantityValue(21.5, "Cel"),
		},
	}

	array, err := Codec{}.BuildDataArray(obs)
	require.NoError(t, err)

	require.Len(t, array.ElementType.Fields, 2)
	assert.Equal(t, swe.FieldTime, array.ElementType.Fields[0].Type)
	assert.Equal(t, swe.FieldQuantity, array.ElementType.Fields[1].Type)
	assert.Equal(t, "Cel", array.ElementType.Fields[1].Uom)

	require.Equal(t, 1, array.Len())
	assert.Equal(t, []string{"2013-06-01T12:00:00Z", "21.5"}, array.Blocks()[0])
	assert.Equal(t, ",", array.Encoding.TokenSeparator)
	assert.Equal(t, ";", array.Encoding.BlockSeparator)
}

func TestBuildDataArray_NoDataSubstitution(t *testing.T) {
	temp := om.NewObservableProperty("temperature", "")
	temp.CheckOrSetUnit("Cel")
	pressure := om.NewObservableProperty("pressure", "")
	pressure.CheckOrSetUnit("hPa")

	t1 := gml.NewInstant(time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC))
	t2 := gml.NewInstant(time.Date(2013, 6, 1, 13, 0, 0, 0, time.UTC))

	merged := &om.MergedValue{
		Components: []*om.ObservableProperty{temp, pressure},
		Values: []om.TimedValue{
			{Time: t1, Property: "temperature", Value: om.NewQuantityValue(21.5, "Cel")},
			{Time: t1, Property: "pressure", Value: om.NewQuantityValue(1013, "hPa")},
			// pressure has no reading at t2
			{Time: t2, Property: "temperature", Value: om.NewQuantityValue(22, "Cel")},
		},
	}
	obs := &om.Observation{
		Constellation:  testConstellation(temp),
		NoDataValue:    "noData",
		TokenSeparator: ",",
		TupleSeparator: ";",
		Value:          merged,
	}

	array, err := Codec{}.BuildDataArray(obs)
	require.NoError(t, err)
	require.Equal(t, 2, array.Len())

	assert.Equal(t, []string{"2013-06-01T12:00:00Z", "21.5", "1013"}, array.Blocks()[0])
	assert.Equal(t, []string{"2013-06-01T13:00:00Z", "22", "noData"}, array.Blocks()[1],
		"a missing value must become the no-data token, never an empty or shifted column")
}

func TestBuildDataArray_RowsSortedByTime(t *testing.T) {
	temp := om.NewObservableProperty("temperature", "")
	later := gml.NewInstant(time.Date(2013, 6, 1, 14, 0, 0, 0, time.UTC))
	earlier := gml.NewInstant(time.Date(2013, 6, 1, 12, 0, 0, 0, time.UTC))

	merged := &om.MergedValue{
		Components: []*om.ObservableProperty{temp},
		Values: []om.TimedValue{
			{Time: later, Property: "temperature", Value: om.NewQuantityValue(23, "Cel")},
			{Time: earlier, Property: "temperature", Value: om.NewQuantityValue(21, "Cel")},
		},
	}
	obs := &om.Observation{
		Constellation:  testConstellation(temp),
		NoDataValue:    "noData",
		TokenSeparator: ",",
		TupleSeparator: ";",
		Value:          merged,
	}

	array, err := Codec{}.BuildDataArray(obs)
	require.NoError(t, err)
	require.Equal(t, 2, array.Len())
	assert.Equal(t, "2013-06-01T12:00:00Z", array.Blocks()[0][0])
	assert.Equal(t, "2013-06-01T14:00:00Z", array.Blocks()[1][0])
}

func TestResultText(t *testing.T) {
	elementType := swe.NewDataRecord(swe.PhenomenonTimeField(), swe.Field{
		Name: "temperature", Type: swe.FieldQuantity, Definition: "temperature", Uom: "Cel",
	})
	encoding := swe.TextEncoding{TokenSeparator: ",", BlockSeparator: ";", DecimalSeparator: "."}
	array := swe.NewDataArray(elementType, encoding)
	require.NoError(t, array.AppendBlock([]string{"2013-06-01T12:00:00Z", "21.5"}))
	require.NoError(t, array.AppendBlock([]string{"2013-06-01T13:00:00Z", "22"}))

	text := ResultText(array)
	assert.Equal(t, "2013-06-01T12:00:00Z,21.5;2013-06-01T13:00:00Z,22;", text)

	parsed, err := ParseResultText(elementType, encoding, text)
	require.NoError(t, err)
	assert.Equal(t, array.Blocks(), parsed.Blocks())
}

func TestParseResultText_TokenCountMismatch(t *testing.T) {
	elementType := swe.NewDataRecord(swe.PhenomenonTimeField(), swe.Field{
		Name: "temperature", Type: swe.FieldQuantity, Definition: "temperature",
	})
	encoding := swe.TextEncoding{TokenSeparator: ",", BlockSeparator: ";"}

	_, err := ParseResultText(elementType, encoding, "2013-06-01T12:00:00Z,21.5,extra;")
	assert.Error(t, err, "a block with the wrong token count is a data-format error")
}

func TestParseFieldToken(t *testing.T) {
	tests := []struct {
		name  string
		field swe.Field
		token string
		want  om.Value
	}{
		{
			name:  "quantity with unit",
			field: swe.Field{Name: "temperature", Type: swe.FieldQuantity, Uom: "Cel"},
			token: "21.5",
			want:  om.NewQuantityValue(21.5, "Cel"),
		},
		{
			name:  "boolean",
			field: swe.Field{Name: "raining", Type: swe.FieldBoolean},
			token: "true",
			want:  om.NewBooleanValue(true),
		},
		{
			name:  "count",
			field: swe.Field{Name: "birds", Type: swe.FieldCount},
			token: "42",
			want:  om.NewCountValue(42),
		},
		{
			name:  "category with code space",
			field: swe.Field{Name: "weather", Type: swe.FieldCategory, Uom: "http://example.org/codes"},
			token: "overcast",
			want:  om.NewCategoryValue("overcast", "http://example.org/codes"),
		},
		{
			name:  "text",
			field: swe.Field{Name: "note", Type: swe.FieldText},
			token: "calm morning",
			want:  om.NewTextValue("calm morning"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldToken(tt.field, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldToken_UnsupportedType(t *testing.T) {
	_, err := ParseFieldToken(swe.Field{Name: "when", Type: swe.FieldTime}, "2013-06-01T12:00:00Z")
	assert.Error(t, err, "time fields are handled by the unfold loop, not the token parser")

	_, err = ParseFieldToken(swe.Field{Name: "bad", Type: swe.FieldQuantity}, "not-a-number")
	assert.Error(t, err)
}
