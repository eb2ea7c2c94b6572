package om

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// ValueKind tags the closed union of observation value types. The persisted
// schema partitions values into one table per kind; the in-memory model keeps
// the same partitioning as an explicit tag instead of open-ended type checks.
type ValueKind int

const (
	// KindNotDefined is the declared type of an observable property whose
	// value type is unknown. Values themselves never carry it.
	KindNotDefined ValueKind = iota
	// KindBoolean is a truth observation value.
	KindBoolean
	// KindCount is an integer count value.
	KindCount
	// KindCategory is a category code, its unit slot holding the code space.
	KindCategory
	// KindQuantity is a numeric measurement value.
	KindQuantity
	// KindText is a free-text value.
	KindText
	// KindGeometry is a geometry value with an SRID.
	KindGeometry
	// KindBlob is an opaque byte value.
	KindBlob
	// KindNilTemplate is the sentinel for result-template responses that
	// carry no data yet.
	KindNilTemplate
)

// String returns the tag name used in logs and error messages.
func (k ValueKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindCount:
		return "count"
	case KindCategory:
		return "category"
	case KindQuantity:
		return "numeric"
	case KindText:
		return "text"
	case KindGeometry:
		return "geometry"
	case KindBlob:
		return "blob"
	case KindNilTemplate:
		return "nilTemplate"
	default:
		return "not defined"
	}
}

// Geometry is a geometry value carried as WKT plus the spatial reference
// system it is expressed in.
type Geometry struct {
	WKT  string
	SRID int
}

// String returns the wire form: WKT text, '#', SRID.
func (g Geometry) String() string {
	return fmt.Sprintf("%s#%d", g.WKT, g.SRID)
}

// Value is one observation value of the closed union. Exactly one slot
// matching Kind is populated; Unit is optional and, for category values,
// holds the code space.
type Value struct {
	Kind     ValueKind
	Unit     string
	Boolean  bool
	Count    int
	Category string
	Quantity float64
	Text     string
	Geometry Geometry
	Blob     []byte
}

// NewBooleanValue creates a boolean value.
func NewBooleanValue(v bool) Value {
	return Value{Kind: KindBoolean, Boolean: v}
}

// NewCountValue creates a count value.
func NewCountValue(v int) Value {
	return Value{Kind: KindCount, Count: v}
}

// NewCategoryValue creates a category value. The code space travels in the
// unit slot, matching the persisted representation.
func NewCategoryValue(code, codeSpace string) Value {
	return Value{Kind: KindCategory, Category: code, Unit: codeSpace}
}

// NewQuantityValue creates a numeric value with its unit of measure.
func NewQuantityValue(v float64, uom string) Value {
	return Value{Kind: KindQuantity, Quantity: v, Unit: uom}
}

// NewTextValue creates a text value.
func NewTextValue(v string) Value {
	return Value{Kind: KindText, Text: v}
}

// NewGeometryValue creates a geometry value.
func NewGeometryValue(g Geometry) Value {
	return Value{Kind: KindGeometry, Geometry: g}
}

// NewBlobValue creates an opaque byte value.
func NewBlobValue(b []byte) Value {
	return Value{Kind: KindBlob, Blob: b}
}

// NilTemplateValue creates the sentinel value for result-template responses
// with no data yet.
func NilTemplateValue() Value {
	return Value{Kind: KindNilTemplate}
}

// IsSet reports whether the value carries data.
func (v Value) IsSet() bool {
	return v.Kind != KindNotDefined && v.Kind != KindNilTemplate
}

// Token returns the textual token used in SWE array blocks: decimal string
// for quantities, "true"/"false" for booleans, the code for categories, WKT
// plus SRID for geometries. Nil-template and undefined values produce an
// empty token; callers substitute the configured no-data placeholder.
func (v Value) Token() string {
	switch v.Kind {
	case KindBoolean:
		return strconv.FormatBool(v.Boolean)
	case KindCount:
		return strconv.Itoa(v.Count)
	case KindCategory:
		return v.Category
	case KindQuantity:
		return strconv.FormatFloat(v.Quantity, 'f', -1, 64)
	case KindText:
		return v.Text
	case KindGeometry:
		return v.Geometry.String()
	case KindBlob:
		return base64.StdEncoding.EncodeToString(v.Blob)
	default:
		return ""
	}
}

// Quality is one quality entry attached to a single observation value.
type Quality struct {
	Name  string
	Unit  string
	Value string
	Type  QualityType
}

// QualityType enumerates the SWE simple types a quality value may take.
type QualityType string

const (
	// QualityQuantity is a numeric quality value.
	QualityQuantity QualityType = "quantity"
	// QualityCategory is a categorical quality value.
	QualityCategory QualityType = "category"
	// QualityText is a textual quality value.
	QualityText QualityType = "text"
)
