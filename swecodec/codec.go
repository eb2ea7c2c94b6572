package swecodec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
	"github.com/geomatico/52n-sos-4.0-sub001/swe"
)

// Codec builds and consumes data arrays. TimeFormat overrides the response
// time format; empty means the default ISO form.
type Codec struct {
	TimeFormat string
}

// FieldForValue infers the SWE field for an observation value: quantity
// fields carry the unit of measure, category fields the code space.
func FieldForValue(v om.Value, name string) (swe.Field, error) {
	f := swe.Field{Name: name, Definition: name}
	switch v.Kind {
	case om.KindBoolean:
		f.Type = swe.FieldBoolean
	case om.KindCount:
		f.Type = swe.FieldCount
	case om.KindCategory:
		f.Type = swe.FieldCategory
		f.Uom = v.Unit
	case om.KindQuantity:
		f.Type = swe.FieldQuantity
		f.Uom = v.Unit
	case om.KindText:
		f.Type = swe.FieldText
	default:
		return swe.Field{}, errors.NewNoApplicableCode(nil,
			"value kind \"%s\" not supported as a data array field", v.Kind)
	}
	return f, nil
}

// ParseFieldToken converts one block token into a typed value according to
// the field's declared type, attaching the declared unit or code space.
// Field types outside the supported set are a hard failure.
func ParseFieldToken(field swe.Field, token string) (om.Value, error) {
	switch field.Type {
	case swe.FieldQuantity:
		q, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return om.Value{}, errors.NewNoApplicableCode(err,
				"cannot parse token \"%s\" of field \"%s\" as a decimal", token, field.Name)
		}
		return om.NewQuantityValue(q, field.Uom), nil
	case swe.FieldBoolean:
		b, err := strconv.ParseBool(token)
		if err != nil {
			return om.Value{}, errors.NewNoApplicableCode(err,
				"cannot parse token \"%s\" of field \"%s\" as a boolean", token, field.Name)
		}
		return om.NewBooleanValue(b), nil
	case swe.FieldCount:
		n, err := strconv.Atoi(token)
		if err != nil {
			return om.Value{}, errors.NewNoApplicableCode(err,
				"cannot parse token \"%s\" of field \"%s\" as a count", token, field.Name)
		}
		return om.NewCountValue(n), nil
	case swe.FieldCategory:
		return om.NewCategoryValue(token, field.Uom), nil
	case swe.FieldText:
		return om.NewTextValue(token), nil
	default:
		return om.Value{}, errors.NewNoApplicableCode(nil,
			"sweField type \"%s\" not supported", field.Type)
	}
}

// encodingFor derives the text encoding from an observation's separators.
func encodingFor(obs *om.Observation) swe.TextEncoding {
	return swe.TextEncoding{
		TokenSeparator:   obs.TokenSeparator,
		BlockSeparator:   obs.TupleSeparator,
		DecimalSeparator: obs.DecimalSeparator,
	}
}

// BuildDataArray folds an observation's value into a data array. A result
// template on the constellation dictates structure and encoding; otherwise
// the element type is derived from the observed values and the encoding from
// the observation's separators. Multi-valued observations pass their array
// through unchanged.
func (c Codec) BuildDataArray(obs *om.Observation) (*swe.DataArray, error) {
	if obs.Value == nil {
		return nil, errors.NewNoApplicableCode(nil, "observation %s has no value", obs.ObservationID)
	}
	if template := obs.Constellation.ResultTemplate; template != nil {
		return c.buildWithTemplate(obs, template)
	}
	switch v := obs.Value.(type) {
	case *om.MultiObservationValue:
		return v.Array, nil
	case *om.SingleObservationValue:
		field, err := FieldForValue(v.Value, obs.Constellation.ObservableProperty.Identifier)
		if err != nil {
			return nil, err
		}
		elementType := swe.NewDataRecord(swe.PhenomenonTimeField(), field)
		array := swe.NewDataArray(elementType, encodingFor(obs))
		block := []string{c.formatTime(v.Time), tokenOrNoData(v.Value, obs.NoDataValue)}
		if err := array.AppendBlock(block); err != nil {
			return nil, err
		}
		return array, nil
	case *om.MergedValue:
		return c.buildFromMerged(obs, v)
	default:
		return nil, errors.NewNoApplicableCode(nil, "observation value type %T not supported", obs.Value)
	}
}

func (c Codec) buildWithTemplate(obs *om.Observation, template *swe.ResultTemplate) (*swe.DataArray, error) {
	switch v := obs.Value.(type) {
	case *om.MultiObservationValue:
		// The stored blocks already follow the template layout; only the
		// descriptor is replaced.
		array := swe.NewDataArray(template.Structure, template.Encoding)
		for _, block := range v.Array.Blocks() {
			if err := array.AppendBlock(block); err != nil {
				return nil, err
			}
		}
		return array, nil
	case *om.SingleObservationValue:
		array := swe.NewDataArray(template.Structure, template.Encoding)
		block, err := c.BuildBlock(template.Structure, v.Time,
			obs.Constellation.ObservableProperty.Identifier, v.Value, obs.NoDataValue)
		if err != nil {
			return nil, err
		}
		if err := array.AppendBlock(block); err != nil {
			return nil, err
		}
		return array, nil
	default:
		return nil, errors.NewNoApplicableCode(nil,
			"observation value type %T not supported with a result template", obs.Value)
	}
}

// BuildBlock fills one block following the structure's field order: the time
// field gets the phenomenon time, the field whose definition matches the
// observed property gets the value, everything else the no-data token.
func (c Codec) BuildBlock(structure *swe.DataRecord, t gml.Time, propertyID string,
	value om.Value, noData string) ([]string, error) {
	if structure == nil {
		return nil, errors.NewNoApplicableCode(nil, "block requested without a structure")
	}
	block := make([]string, 0, len(structure.Fields))
	for _, field := range structure.Fields {
		switch {
		case field.Type.IsTime():
			block = append(block, c.formatTime(t))
		case field.Definition == propertyID:
			block = append(block, tokenOrNoData(value, noData))
		default:
			block = append(block, noData)
		}
	}
	return block, nil
}

// buildFromMerged produces the time-sorted result matrix of a merged
// observation: one row per distinct phenomenon time, one column per observed
// property in first-seen order, missing cells substituted with the no-data
// token. A missing value never becomes an empty token or a shifted column.
func (c Codec) buildFromMerged(obs *om.Observation, merged *om.MergedValue) (*swe.DataArray, error) {
	fields := []swe.Field{swe.PhenomenonTimeField()}
	kindByProperty := make(map[string]om.Value)
	for _, tv := range merged.Values {
		if _, ok := kindByProperty[tv.Property]; !ok {
			kindByProperty[tv.Property] = tv.Value
		}
	}
	for _, component := range merged.Components {
		sample, ok := kindByProperty[component.Identifier]
		if !ok {
			return nil, errors.NewNoApplicableCode(nil,
				"merged observation has no value for property \"%s\"", component.Identifier)
		}
		field, err := FieldForValue(sample, component.Identifier)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if component.Unit != "" {
			fields[len(fields)-1].Uom = component.Unit
		}
	}
	elementType := swe.NewDataRecord(fields...)

	valueMap := make(map[string]map[string]om.Value)
	timeByKey := make(map[string]gml.Time)
	for _, tv := range merged.Values {
		key := gml.FormatTime(tv.Time, "")
		if _, ok := valueMap[key]; !ok {
			valueMap[key] = make(map[string]om.Value)
			timeByKey[key] = tv.Time
		}
		valueMap[key][tv.Property] = tv.Value
	}
	keys := make([]string, 0, len(valueMap))
	for key := range valueMap {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return timeByKey[keys[i]].Reference().Before(timeByKey[keys[j]].Reference())
	})

	array := swe.NewDataArray(elementType, encodingFor(obs))
	for _, key := range keys {
		row := valueMap[key]
		block := make([]string, 0, len(fields))
		block = append(block, c.formatTime(timeByKey[key]))
		for _, component := range merged.Components {
			if v, ok := row[component.Identifier]; ok {
				block = append(block, tokenOrNoData(v, obs.NoDataValue))
			} else {
				block = append(block, obs.NoDataValue)
			}
		}
		if err := array.AppendBlock(block); err != nil {
			return nil, err
		}
	}
	return array, nil
}

// ResultText renders the token matrix: tokens joined by the token separator,
// every block terminated by the block separator.
func ResultText(array *swe.DataArray) string {
	var b strings.Builder
	for _, block := range array.Blocks() {
		b.WriteString(strings.Join(block, array.Encoding.TokenSeparator))
		b.WriteString(array.Encoding.BlockSeparator)
	}
	return b.String()
}

// ParseResultText splits a result text body back into blocks, validating the
// token count of every block against the element type.
func ParseResultText(elementType *swe.DataRecord, encoding swe.TextEncoding, body string) (*swe.DataArray, error) {
	array := swe.NewDataArray(elementType, encoding)
	trimmed := strings.TrimSuffix(body, encoding.BlockSeparator)
	if trimmed == "" {
		return array, nil
	}
	for _, raw := range strings.Split(trimmed, encoding.BlockSeparator) {
		tokens := strings.Split(raw, encoding.TokenSeparator)
		if err := array.AppendBlock(tokens); err != nil {
			return nil, fmt.Errorf("swecodec.ParseResultText: %w", err)
		}
	}
	return array, nil
}

func (c Codec) formatTime(t gml.Time) string {
	return gml.FormatTime(t, c.TimeFormat)
}

func tokenOrNoData(v om.Value, noData string) string {
	if token := v.Token(); token != "" {
		return token
	}
	return noData
}
