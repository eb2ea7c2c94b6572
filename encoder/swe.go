package encoder

import (
	"encoding/xml"
	"strings"

	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
	"github.com/geomatico/52n-sos-4.0-sub001/swe"
	"github.com/geomatico/52n-sos-4.0-sub001/swecodec"
)

type xmlDataArray struct {
	XMLName      xml.Name        `xml:"swe:DataArray"`
	ElementCount xmlElementCount `xml:"swe:elementCount"`
	ElementType  xmlElementType  `xml:"swe:elementType"`
	Encoding     xmlTextEncoding `xml:"swe:encoding"`
	Values       string          `xml:"swe:values"`
}

type xmlElementCount struct {
	Count int `xml:"swe:Count>swe:value"`
}

type xmlElementType struct {
	Name   string        `xml:"name,attr"`
	Record xmlDataRecord `xml:"swe:DataRecord"`
}

type xmlDataRecord struct {
	Fields []xmlField `xml:"swe:field"`
}

type xmlField struct {
	Name      string        `xml:"name,attr"`
	Time      *xmlComponent `xml:"swe:Time,omitempty"`
	TimeRange *xmlComponent `xml:"swe:TimeRange,omitempty"`
	Quantity  *xmlComponent `xml:"swe:Quantity,omitempty"`
	Boolean   *xmlComponent `xml:"swe:Boolean,omitempty"`
	Count     *xmlComponent `xml:"swe:Count,omitempty"`
	Category  *xmlComponent `xml:"swe:Category,omitempty"`
	Text      *xmlComponent `xml:"swe:Text,omitempty"`
}

type xmlComponent struct {
	Definition string  `xml:"definition,attr,omitempty"`
	Uom        *xmlUom `xml:"swe:uom,omitempty"`
}

type xmlUom struct {
	Code string `xml:"code,attr"`
}

type xmlTextEncoding struct {
	Text xmlTextEncodingAttrs `xml:"swe:TextEncoding"`
}

type xmlTextEncodingAttrs struct {
	TokenSeparator   string `xml:"tokenSeparator,attr"`
	BlockSeparator   string `xml:"blockSeparator,attr"`
	DecimalSeparator string `xml:"decimalSeparator,attr,omitempty"`
}

// DataArrayEncoder encodes block-encoded data arrays.
type DataArrayEncoder struct{}

// EncoderKeys implements coding.Encoder.
func (DataArrayEncoder) EncoderKeys() []coding.EncoderKey {
	return coding.EncoderKeysForElements(ogc.NamespaceSWE, &swe.DataArray{})
}

// Encode renders a swe:DataArray with its element type descriptor, text
// encoding and the token matrix.
func (DataArrayEncoder) Encode(obj any, _ *coding.Context) (any, error) {
	array, ok := obj.(*swe.DataArray)
	if !ok {
		return nil, errors.NewNoApplicableCode(nil, "cannot encode %T as a data array", obj)
	}
	rendered, err := renderDataArray(array)
	if err != nil {
		return nil, err
	}
	return xml.Marshal(rendered)
}

func renderDataArray(array *swe.DataArray) (xmlDataArray, error) {
	if array.ElementType == nil {
		return xmlDataArray{}, errors.NewNoApplicableCode(nil, "data array without an element type")
	}
	fields := make([]xmlField, 0, len(array.ElementType.Fields))
	for _, field := range array.ElementType.Fields {
		rendered, err := renderField(field)
		if err != nil {
			return xmlDataArray{}, err
		}
		fields = append(fields, rendered)
	}
	return xmlDataArray{
		ElementCount: xmlElementCount{Count: array.Len()},
		ElementType:  xmlElementType{Name: "defs", Record: xmlDataRecord{Fields: fields}},
		Encoding: xmlTextEncoding{Text: xmlTextEncodingAttrs{
			TokenSeparator:   array.Encoding.TokenSeparator,
			BlockSeparator:   array.Encoding.BlockSeparator,
			DecimalSeparator: array.Encoding.DecimalSeparator,
		}},
		Values: swecodec.ResultText(array),
	}, nil
}

func renderField(field swe.Field) (xmlField, error) {
	component := &xmlComponent{Definition: field.Definition}
	if field.Uom != "" {
		component.Uom = &xmlUom{Code: field.Uom}
	}
	rendered := xmlField{Name: safeFieldName(field.Name)}
	switch field.Type {
	case swe.FieldTime:
		if component.Uom == nil {
			component.Uom = &xmlUom{Code: swe.UomISO8601}
		}
		rendered.Time = component
	case swe.FieldTimeRange:
		if component.Uom == nil {
			component.Uom = &xmlUom{Code: swe.UomISO8601}
		}
		rendered.TimeRange = component
	case swe.FieldQuantity:
		rendered.Quantity = component
	case swe.FieldBoolean:
		rendered.Boolean = component
	case swe.FieldCount:
		rendered.Count = component
	case swe.FieldCategory:
		rendered.Category = component
	case swe.FieldText:
		rendered.Text = component
	default:
		return xmlField{}, errors.NewNoApplicableCode(nil, "sweField type \"%s\" cannot be encoded", field.Type)
	}
	return rendered, nil
}

// safeFieldName keeps field names valid NCNames; definition URLs used as
// names get their separators replaced.
func safeFieldName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case ':', '/', '#':
			b.WriteByte('_')
		default:
			b.WriteByte(name[i])
		}
	}
	return b.String()
}
