package om

import (
	"sort"
	"strings"

	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/swe"
)

// Observation type URIs from the OM 2.0 vocabulary.
const (
	ObsTypeMeasurement         = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_Measurement"
	ObsTypeCategoryObservation = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_CategoryObservation"
	ObsTypeCountObservation    = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_CountObservation"
	ObsTypeTruthObservation    = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_TruthObservation"
	ObsTypeTextObservation     = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_TextObservation"
	ObsTypeGeometryObservation = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_GeometryObservation"
	ObsTypeSWEArrayObservation = "http://www.opengis.net/def/observationType/OGC-OM/2.0/OM_SWEArrayObservation"
)

// ObservableProperty is the phenomenon an observation measures. Constructed
// per query from persisted metadata; immutable afterwards except for the unit,
// which is back-filled once from the first observed value carrying one.
type ObservableProperty struct {
	Identifier   string
	Description  string
	Unit         string
	DeclaredKind ValueKind
}

// NewObservableProperty creates a property without a unit; the unit is
// back-filled during reconciliation.
func NewObservableProperty(identifier, description string) *ObservableProperty {
	return &ObservableProperty{Identifier: identifier, Description: description}
}

// CheckOrSetUnit sets the unit once from an observed value. A unit already
// present is never overwritten.
func (p *ObservableProperty) CheckOrSetUnit(unit string) {
	if p.Unit == "" && unit != "" {
		p.Unit = unit
	}
}

// Procedure identifies the sensor or process that produced an observation.
type Procedure struct {
	Identifier        string
	DescriptionFormat string
	Description       string
}

// FeatureOfInterest is the sampled real-world feature an observation refers to.
type FeatureOfInterest struct {
	Identifier     gml.CodeWithAuthority
	Name           string
	Geometry       Geometry
	SampledFeature string
}

// ObservationConstellation groups observations by (procedure, observable
// property, offerings, feature of interest, observation type). It serves both
// as a merge key, requiring stable value-based equality, and as a payload
// carried into the final observation.
type ObservationConstellation struct {
	Procedure          *Procedure
	ObservableProperty *ObservableProperty
	Offerings          []string
	FeatureOfInterest  *FeatureOfInterest
	ObservationType    string
	ResultTemplate     *swe.ResultTemplate
}

// Key returns a canonical string for hashed lookup. Offerings are sorted so
// the key is independent of insertion order.
func (c *ObservationConstellation) Key() string {
	offerings := append([]string(nil), c.Offerings...)
	sort.Strings(offerings)
	parts := []string{
		c.Procedure.Identifier,
		c.ObservableProperty.Identifier,
		c.FeatureOfInterest.Identifier.Value,
		c.ObservationType,
		strings.Join(offerings, ","),
	}
	return strings.Join(parts, "|")
}

// Equal reports full structural equality.
func (c *ObservationConstellation) Equal(other *ObservationConstellation) bool {
	if other == nil {
		return false
	}
	return c.Key() == other.Key()
}

// EqualExcludingObservableProperty reports whether two constellations may be
// merged into one generic observation: same procedure, feature and
// observation type. Array observations never merge; their blocks already
// follow a fixed template layout.
func (c *ObservationConstellation) EqualExcludingObservableProperty(other *ObservationConstellation) bool {
	if other == nil {
		return false
	}
	return c.Procedure.Identifier == other.Procedure.Identifier &&
		c.FeatureOfInterest.Identifier.Value == other.FeatureOfInterest.Identifier.Value &&
		c.ObservationType == other.ObservationType &&
		c.mergeableObservationType()
}

func (c *ObservationConstellation) mergeableObservationType() bool {
	return c.ObservationType != ObsTypeSWEArrayObservation
}

// ObservationValue is the result slot of an observation: a single typed
// value, a SWE data-array holder, or the merged per-property value list built
// for generic-observation encoding. The union is closed.
type ObservationValue interface {
	// PhenomenonTime returns the time the value refers to.
	PhenomenonTime() gml.Time

	isObservationValue()
}

// SingleObservationValue is one typed value with its quality entries.
type SingleObservationValue struct {
	Time      gml.Time
	Value     Value
	Qualities []Quality
}

// PhenomenonTime returns the time the value refers to.
func (v *SingleObservationValue) PhenomenonTime() gml.Time { return v.Time }

func (*SingleObservationValue) isObservationValue() {}

// MultiObservationValue wraps a block-encoded SWE data array.
type MultiObservationValue struct {
	Time  gml.Time
	Array *swe.DataArray
}

// PhenomenonTime returns the time of the earliest block, or the explicit time
// when one is set.
func (v *MultiObservationValue) PhenomenonTime() gml.Time { return v.Time }

func (*MultiObservationValue) isObservationValue() {}

// TimedValue is one (phenomenon time, observable property, value) triple
// inside a merged observation.
type TimedValue struct {
	Time     gml.Time
	Property string
	Value    Value
}

// MergedValue accumulates the values of several observations sharing a
// constellation (excluding observable property). Components keeps the
// observed properties in first-seen order; Values holds one entry per
// (time, property) pair.
type MergedValue struct {
	Components []*ObservableProperty
	Values     []TimedValue
}

// PhenomenonTime returns the earliest time of the merged values.
func (v *MergedValue) PhenomenonTime() gml.Time {
	var earliest gml.Time
	for _, tv := range v.Values {
		if earliest == nil || tv.Time.Reference().Before(earliest.Reference()) {
			earliest = tv.Time
		}
	}
	return earliest
}

func (*MergedValue) isObservationValue() {}

func (v *MergedValue) addComponent(p *ObservableProperty) {
	for _, c := range v.Components {
		if c.Identifier == p.Identifier {
			return
		}
	}
	v.Components = append(v.Components, p)
}

// Observation is one assembled in-memory observation. ObservationID is the
// internal identifier and always present; Identifier is the externally
// visible one and optional. The separators and no-data value are only used by
// the array/text encoding.
type Observation struct {
	ObservationID string
	Identifier    gml.CodeWithAuthority
	Constellation *ObservationConstellation
	ResultTime    *gml.Instant
	ValidTime     *gml.Period
	Value         ObservationValue

	NoDataValue      string
	TokenSeparator   string
	TupleSeparator   string
	DecimalSeparator string

	// ResultStructure overrides the generated element type when a result
	// template dictates the array layout.
	ResultStructure *swe.DataRecord
}

// PhenomenonTime returns the phenomenon time of the observation's value.
func (o *Observation) PhenomenonTime() gml.Time {
	if o.Value == nil {
		return nil
	}
	return o.Value.PhenomenonTime()
}

// MergeWith folds another observation's values into this one, keyed by
// phenomenon time and observable property. The receiver's value is converted
// to a MergedValue on first merge and the result time is dropped; a merged
// observation no longer has a single result time.
func (o *Observation) MergeWith(other *Observation) {
	merged, ok := o.Value.(*MergedValue)
	if !ok {
		merged = &MergedValue{}
		o.absorb(merged, o)
		o.Value = merged
	}
	o.absorb(merged, other)
	o.ResultTime = nil
}

func (o *Observation) absorb(merged *MergedValue, from *Observation) {
	switch v := from.Value.(type) {
	case *SingleObservationValue:
		merged.addComponent(from.Constellation.ObservableProperty)
		merged.Values = append(merged.Values, TimedValue{
			Time:     v.Time,
			Property: from.Constellation.ObservableProperty.Identifier,
			Value:    v.Value,
		})
	case *MergedValue:
		for _, c := range v.Components {
			merged.addComponent(c)
		}
		merged.Values = append(merged.Values, v.Values...)
	case *MultiObservationValue:
		// Array values keep their block form; merging them token-wise
		// would lose the template-driven layout.
		merged.addComponent(from.Constellation.ObservableProperty)
	}
}
