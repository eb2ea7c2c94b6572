// Package encoder renders the in-memory observation model into OGC XML
// fragments. Each encoder implements coding.Encoder and registers itself
// under the XML namespace and Go type it produces for; lookup and dispatch
// happen through the codec registry.
package encoder

import (
	"encoding/xml"

	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
)

type xmlTimeInstant struct {
	XMLName      xml.Name `xml:"gml:TimeInstant"`
	ID           string   `xml:"gml:id,attr,omitempty"`
	TimePosition string   `xml:"gml:timePosition"`
}

type xmlTimePeriod struct {
	XMLName       xml.Name `xml:"gml:TimePeriod"`
	ID            string   `xml:"gml:id,attr,omitempty"`
	BeginPosition string   `xml:"gml:beginPosition"`
	EndPosition   string   `xml:"gml:endPosition"`
}

// TimeEncoder encodes time instants and periods.
type TimeEncoder struct {
	// TimeFormat overrides the default ISO form.
	TimeFormat string
}

// EncoderKeys implements coding.Encoder.
func (TimeEncoder) EncoderKeys() []coding.EncoderKey {
	return coding.EncoderKeysForElements(ogc.NamespaceGML, gml.Instant{}, gml.Period{})
}

// Encode renders a gml:TimeInstant or gml:TimePeriod fragment. The GMLID
// helper value, when set, becomes the fragment's gml:id.
func (e TimeEncoder) Encode(obj any, ctx *coding.Context) (any, error) {
	id := ""
	if ctx != nil {
		id, _ = ctx.Helper(coding.HelperGMLID)
	}
	switch t := obj.(type) {
	case gml.Instant:
		return xml.Marshal(xmlTimeInstant{ID: id, TimePosition: gml.Format(t.Value, e.TimeFormat)})
	case gml.Period:
		return xml.Marshal(xmlTimePeriod{
			ID:            id,
			BeginPosition: gml.Format(t.Start, e.TimeFormat),
			EndPosition:   gml.Format(t.End, e.TimeFormat),
		})
	default:
		return nil, errors.NewNoApplicableCode(nil, "cannot encode %T as a gml time", obj)
	}
}

type xmlFeatureRef struct {
	XMLName xml.Name `xml:"om:featureOfInterest"`
	Href    string   `xml:"xlink:href,attr"`
	Title   string   `xml:"xlink:title,attr,omitempty"`
}

type xmlSamplingFeature struct {
	XMLName        xml.Name `xml:"sams:SF_SpatialSamplingFeature"`
	ID             string   `xml:"gml:id,attr"`
	Identifier     *xmlCode `xml:"gml:identifier,omitempty"`
	Name           string   `xml:"gml:name,omitempty"`
	SampledFeature xmlHref  `xml:"sf:sampledFeature"`
	Shape          *xmlGeom `xml:"sams:shape,omitempty"`
}

type xmlCode struct {
	CodeSpace string `xml:"codeSpace,attr,omitempty"`
	Value     string `xml:",chardata"`
}

type xmlHref struct {
	Href string `xml:"xlink:href,attr"`
}

type xmlGeom struct {
	WKT  string `xml:"wkt"`
	SRID int    `xml:"srid"`
}

// FeatureEncoder encodes features of interest as spatial sampling features.
// Within one encoding context every feature gets exactly one full rendering;
// repeated occurrences encode as an xlink reference to the first one.
type FeatureEncoder struct{}

// EncoderKeys implements coding.Encoder.
func (FeatureEncoder) EncoderKeys() []coding.EncoderKey {
	return coding.EncoderKeysForElements(ogc.NamespaceSAMS, &om.FeatureOfInterest{})
}

// Encode renders a sams:SF_SpatialSamplingFeature, or an href reference when
// the feature was already rendered in this context or the EXIST_FOI_IN_DOC
// helper marks it as present in the target document.
func (FeatureEncoder) Encode(obj any, ctx *coding.Context) (any, error) {
	feature, ok := obj.(*om.FeatureOfInterest)
	if !ok {
		return nil, errors.NewNoApplicableCode(nil, "cannot encode %T as a sampling feature", obj)
	}
	if ctx == nil {
		ctx = coding.NewContext()
	}
	id, seen := ctx.FeatureID(feature.Identifier.Value)
	if seen || ctx.HelperSet(coding.HelperExistFOIInDoc) {
		return xml.Marshal(xmlFeatureRef{Href: "#" + id, Title: feature.Name})
	}
	sampled := feature.SampledFeature
	if sampled == "" {
		sampled = ogc.NilUnknown
	}
	rendered := xmlSamplingFeature{
		ID:             id,
		Name:           feature.Name,
		SampledFeature: xmlHref{Href: sampled},
	}
	if feature.Identifier.IsSet() {
		rendered.Identifier = &xmlCode{CodeSpace: feature.Identifier.CodeSpace, Value: feature.Identifier.Value}
	}
	if feature.Geometry.WKT != "" {
		rendered.Shape = &xmlGeom{WKT: feature.Geometry.WKT, SRID: feature.Geometry.SRID}
	}
	return xml.Marshal(rendered)
}
