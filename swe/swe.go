package swe

import (
	"fmt"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// Definition URIs for well-known fields.
const (
	// PhenomenonTimeDefinition marks the leading time field of an element type.
	PhenomenonTimeDefinition = "http://www.opengis.net/def/property/OGC/0/PhenomenonTime"
	// PhenomenonTimeName is the conventional field name of the time field.
	PhenomenonTimeName = "phenomenonTime"
	// UomISO8601 is the unit reference for ISO-8601 encoded time fields.
	UomISO8601 = "http://www.opengis.net/def/uom/ISO-8601/0/Gregorian"
)

// FieldType is the closed enumeration of SWE simple types a field may carry.
type FieldType int

const (
	// FieldTime is an ISO-8601 instant.
	FieldTime FieldType = iota
	// FieldTimeRange is a slash-separated ISO-8601 period.
	FieldTimeRange
	// FieldQuantity is a decimal number with a unit of measure.
	FieldQuantity
	// FieldBoolean is "true" or "false".
	FieldBoolean
	// FieldCount is an integer.
	FieldCount
	// FieldCategory is a code from a code space.
	FieldCategory
	// FieldText is free text.
	FieldText
)

// String returns the SWE element name of the type.
func (t FieldType) String() string {
	switch t {
	case FieldTime:
		return "Time"
	case FieldTimeRange:
		return "TimeRange"
	case FieldQuantity:
		return "Quantity"
	case FieldBoolean:
		return "Boolean"
	case FieldCount:
		return "Count"
	case FieldCategory:
		return "Category"
	case FieldText:
		return "Text"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// IsTime reports whether the type encodes a phenomenon time token.
func (t FieldType) IsTime() bool {
	return t == FieldTime || t == FieldTimeRange
}

// Field is one named, typed component of a data record. Uom holds the unit of
// measure for quantities and time fields, and the code space for categories.
type Field struct {
	Name       string
	Type       FieldType
	Definition string
	Uom        string
}

// DataRecord is the ordered element type of a data array: a leading time
// field plus N data fields.
type DataRecord struct {
	Fields []Field
}

// NewDataRecord creates a record from the given fields.
func NewDataRecord(fields ...Field) *DataRecord {
	return &DataRecord{Fields: fields}
}

// AddField appends a field to the record.
func (r *DataRecord) AddField(f Field) {
	r.Fields = append(r.Fields, f)
}

// FieldAt returns the field declared at the given token index.
func (r *DataRecord) FieldAt(index int) (Field, bool) {
	if index < 0 || index >= len(r.Fields) {
		return Field{}, false
	}
	return r.Fields[index], true
}

// FieldByDefinition returns the first field with the given definition URI.
func (r *DataRecord) FieldByDefinition(definition string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Definition == definition {
			return f, true
		}
	}
	return Field{}, false
}

// PhenomenonTimeField creates the conventional leading time field.
func PhenomenonTimeField() Field {
	return Field{
		Name:       PhenomenonTimeName,
		Type:       FieldTime,
		Definition: PhenomenonTimeDefinition,
		Uom:        UomISO8601,
	}
}

// TextEncoding is the encoding descriptor of a block-encoded array. The
// separators must match exactly between the producer and the consumer of a
// given array value.
type TextEncoding struct {
	TokenSeparator   string
	BlockSeparator   string
	DecimalSeparator string
}

// DataArray is the tabular body of a SWE array value: an element type, an
// encoding descriptor, and a sequence of blocks. Every block has exactly one
// token per declared field, in declaration order.
type DataArray struct {
	ElementType *DataRecord
	Encoding    TextEncoding
	blocks      [][]string
}

// NewDataArray creates an empty array for the given element type and encoding.
func NewDataArray(elementType *DataRecord, encoding TextEncoding) *DataArray {
	return &DataArray{ElementType: elementType, Encoding: encoding}
}

// AppendBlock adds one block. A token count differing from the declared field
// count is a data-format error, never silently truncated or padded.
func (a *DataArray) AppendBlock(tokens []string) error {
	if a.ElementType == nil {
		return errors.Wrap(errors.ErrInvalidData, "swe", "AppendBlock", "element type missing")
	}
	if len(tokens) != len(a.ElementType.Fields) {
		return fmt.Errorf("swe.AppendBlock: block has %d tokens, element type declares %d fields: %w",
			len(tokens), len(a.ElementType.Fields), errors.ErrInvalidData)
	}
	a.blocks = append(a.blocks, tokens)
	return nil
}

// Blocks returns the token matrix.
func (a *DataArray) Blocks() [][]string {
	return a.blocks
}

// Len returns the number of blocks.
func (a *DataArray) Len() int {
	return len(a.blocks)
}

// ResultTemplate pairs a stored result structure with its text encoding. When
// a constellation's observation type is the SWE-array type, a matching
// template dictates the emitted array layout instead of the service defaults.
type ResultTemplate struct {
	Identifier string
	Offering   string
	Structure  *DataRecord
	Encoding   TextEncoding
}
