package encoder

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
	"github.com/geomatico/52n-sos-4.0-sub001/swecodec"
)

type xmlObservation struct {
	XMLName           xml.Name  `xml:"om:OM_Observation"`
	ID                string    `xml:"gml:id,attr"`
	Identifier        *xmlCode  `xml:"gml:identifier,omitempty"`
	Type              xmlHref   `xml:"om:type"`
	PhenomenonTime    xmlInner  `xml:"om:phenomenonTime"`
	ResultTime        xmlInner  `xml:"om:resultTime"`
	ValidTime         *xmlInner `xml:"om:validTime,omitempty"`
	Procedure         xmlHref   `xml:"om:procedure"`
	ObservedProperty  xmlHref   `xml:"om:observedProperty"`
	FeatureOfInterest xmlInner  `xml:"om:featureOfInterest"`
	Result            xmlResult `xml:"om:result"`
}

// xmlInner carries a pre-rendered child fragment.
type xmlInner struct {
	Href     string `xml:"xlink:href,attr,omitempty"`
	Fragment []byte `xml:",innerxml"`
}

type xmlResult struct {
	Type     string `xml:"xsi:type,attr,omitempty"`
	Uom      string `xml:"uom,attr,omitempty"`
	Value    string `xml:",chardata"`
	Fragment []byte `xml:",innerxml"`
}

// ObservationEncoder encodes observations as om:OM_Observation fragments.
// Child fragments are produced through the registry, so replacing the time or
// feature encoder changes observation output too.
type ObservationEncoder struct {
	Registry   *coding.Registry
	TimeFormat string
}

// EncoderKeys implements coding.Encoder.
func (ObservationEncoder) EncoderKeys() []coding.EncoderKey {
	return coding.EncoderKeysForElements(ogc.NamespaceOM, &om.Observation{})
}

// Encode renders one observation. Single values of measurement and count
// type render inline into om:result; everything else renders as a data
// array.
func (e ObservationEncoder) Encode(obj any, ctx *coding.Context) (any, error) {
	observation, ok := obj.(*om.Observation)
	if !ok {
		return nil, errors.NewNoApplicableCode(nil, "cannot encode %T as an observation", obj)
	}
	if ctx == nil {
		ctx = coding.NewContext()
	}
	rendered := xmlObservation{
		ID:               "o_" + observation.ObservationID,
		Type:             xmlHref{Href: observation.Constellation.ObservationType},
		Procedure:        xmlHref{Href: observation.Constellation.Procedure.Identifier},
		ObservedProperty: xmlHref{Href: observation.Constellation.ObservableProperty.Identifier},
	}
	if observation.Identifier.IsSet() {
		rendered.Identifier = &xmlCode{
			CodeSpace: observation.Identifier.CodeSpace,
			Value:     observation.Identifier.Value,
		}
	}

	phenTime := observation.PhenomenonTime()
	if phenTime == nil {
		return nil, errors.NewNoApplicableCode(nil, "observation %s has no phenomenon time", observation.ObservationID)
	}
	phenFragment, err := e.encodeChild(ogc.NamespaceGML, phenTime, ctx, "pt_"+observation.ObservationID)
	if err != nil {
		return nil, err
	}
	rendered.PhenomenonTime = xmlInner{Fragment: phenFragment}

	// a merged observation has no single result time; reference the
	// phenomenon time instead of duplicating it
	if observation.ResultTime != nil {
		fragment, err := e.encodeChild(ogc.NamespaceGML, *observation.ResultTime, ctx, "rt_"+observation.ObservationID)
		if err != nil {
			return nil, err
		}
		rendered.ResultTime = xmlInner{Fragment: fragment}
	} else {
		rendered.ResultTime = xmlInner{Href: "#pt_" + observation.ObservationID}
	}
	if observation.ValidTime != nil {
		fragment, err := e.encodeChild(ogc.NamespaceGML, *observation.ValidTime, ctx, "vt_"+observation.ObservationID)
		if err != nil {
			return nil, err
		}
		rendered.ValidTime = &xmlInner{Fragment: fragment}
	}

	foiFragment, err := e.encodeChild(ogc.NamespaceSAMS, observation.Constellation.FeatureOfInterest, ctx, "")
	if err != nil {
		return nil, err
	}
	rendered.FeatureOfInterest = xmlInner{Fragment: foiFragment}

	result, err := e.encodeResult(observation, ctx)
	if err != nil {
		return nil, err
	}
	rendered.Result = result
	return xml.Marshal(rendered)
}

func (e ObservationEncoder) encodeChild(namespace string, obj any, ctx *coding.Context, gmlID string) ([]byte, error) {
	childCtx := ctx
	if gmlID != "" {
		childCtx = ctx.Derived(coding.HelperGMLID, gmlID)
	}
	encoded, err := coding.EncodeObject(e.Registry, namespace, obj, childCtx)
	if err != nil {
		return nil, err
	}
	fragment, ok := encoded.([]byte)
	if !ok {
		return nil, errors.NewNoApplicableCode(nil, "child encoder for %T returned %T, want bytes", obj, encoded)
	}
	return fragment, nil
}

func (e ObservationEncoder) encodeResult(observation *om.Observation, ctx *coding.Context) (xmlResult, error) {
	if single, ok := observation.Value.(*om.SingleObservationValue); ok {
		switch single.Value.Kind {
		case om.KindQuantity:
			return xmlResult{
				Type:  "gml:MeasureType",
				Uom:   single.Value.Unit,
				Value: strconv.FormatFloat(single.Value.Quantity, 'f', -1, 64),
			}, nil
		case om.KindCount:
			return xmlResult{Type: "xs:integer", Value: strconv.Itoa(single.Value.Count)}, nil
		case om.KindBoolean:
			return xmlResult{Type: "xs:boolean", Value: strconv.FormatBool(single.Value.Boolean)}, nil
		case om.KindText:
			return xmlResult{Type: "xs:string", Value: single.Value.Text}, nil
		case om.KindCategory:
			fragment, err := xml.Marshal(struct {
				XMLName   xml.Name `xml:"gml:Reference"`
				CodeSpace string   `xml:"codeSpace,attr,omitempty"`
				Value     string   `xml:",chardata"`
			}{CodeSpace: single.Value.Unit, Value: single.Value.Category})
			if err != nil {
				return xmlResult{}, errors.Wrap(err, "encoder", "encodeResult", "category result encoding")
			}
			return xmlResult{Fragment: fragment}, nil
		}
	}
	// merged and array values share the data-array result form
	array, err := swecodec.Codec{TimeFormat: e.TimeFormat}.BuildDataArray(observation)
	if err != nil {
		return xmlResult{}, err
	}
	fragment, err := e.encodeChild(ogc.NamespaceSWE, array, ctx, "")
	if err != nil {
		return xmlResult{}, err
	}
	return xmlResult{Fragment: fragment}, nil
}

// EncodeDocument wraps an encoded fragment as a standalone XML document when
// the DOCUMENT helper is set, otherwise returns the fragment unchanged.
func EncodeDocument(fragment []byte, ctx *coding.Context) []byte {
	if ctx == nil || !ctx.HelperSet(coding.HelperDocument) {
		return fragment
	}
	return []byte(fmt.Sprintf("%s%s", xml.Header, fragment))
}
