package decoder

import (
	"strconv"
	"strings"

	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/ogc"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
)

// schema types for om:OM_Observation documents. Namespace prefixes are
// resolved by the parser, so only local names appear here.
type omObservationDoc struct {
	Identifier struct {
		CodeSpace string `xml:"codeSpace,attr"`
		Value     string `xml:",chardata"`
	} `xml:"identifier"`
	Type struct {
		Href string `xml:"href,attr"`
	} `xml:"type"`
	PhenomenonTime    timeProperty    `xml:"phenomenonTime"`
	ResultTime        timeProperty    `xml:"resultTime"`
	Procedure         hrefProperty    `xml:"procedure"`
	ObservedProperty  hrefProperty    `xml:"observedProperty"`
	FeatureOfInterest featureProperty `xml:"featureOfInterest"`
	Result            resultProperty  `xml:"result"`
}

type hrefProperty struct {
	Href string `xml:"href,attr"`
}

type timeProperty struct {
	Href    string `xml:"href,attr"`
	Instant *struct {
		TimePosition string `xml:"timePosition"`
	} `xml:"TimeInstant"`
	Period *struct {
		BeginPosition string `xml:"beginPosition"`
		EndPosition   string `xml:"endPosition"`
	} `xml:"TimePeriod"`
}

type featureProperty struct {
	Href    string `xml:"href,attr"`
	Title   string `xml:"title,attr"`
	Feature *struct {
		Identifier struct {
			CodeSpace string `xml:"codeSpace,attr"`
			Value     string `xml:",chardata"`
		} `xml:"identifier"`
		Name string `xml:"name"`
	} `xml:"SF_SpatialSamplingFeature"`
}

type resultProperty struct {
	Type  string `xml:"type,attr"`
	Uom   string `xml:"uom,attr"`
	Value string `xml:",chardata"`
}

// ObservationXMLDecoder decodes om:OM_Observation documents into the
// in-memory model. Array results are out of scope here; inserted array
// observations arrive through the result-handling operations instead.
type ObservationXMLDecoder struct{}

// DecoderKeys implements coding.Decoder.
func (ObservationXMLDecoder) DecoderKeys() []coding.DecoderKey {
	return coding.DecoderKeysForElements(ogc.NamespaceOM, &coding.XMLDocument{})
}

// Decode implements coding.Decoder.
func (ObservationXMLDecoder) Decode(payload any) (any, error) {
	doc, ok := payload.(*coding.XMLDocument)
	if !ok {
		return nil, errors.NewNoApplicableCode(nil, "observation decoder expects an XML document, got %T", payload)
	}
	var parsed omObservationDoc
	if err := doc.Unmarshal(&parsed); err != nil {
		return nil, &errors.XMLDecodingError{XML: string(doc.Raw), Err: err}
	}
	return buildObservation(&parsed)
}

func buildObservation(parsed *omObservationDoc) (*om.Observation, error) {
	phenTime, err := decodeTime(parsed.PhenomenonTime)
	if err != nil {
		return nil, err
	}
	if phenTime == nil {
		return nil, errors.NewMissingParameterValue("phenomenonTime")
	}
	value, err := decodeResult(parsed.Type.Href, parsed.Result)
	if err != nil {
		return nil, err
	}

	feature := &om.FeatureOfInterest{}
	switch {
	case parsed.FeatureOfInterest.Feature != nil:
		feature.Identifier = gml.NewCodeWithAuthority(
			parsed.FeatureOfInterest.Feature.Identifier.CodeSpace,
			strings.TrimSpace(parsed.FeatureOfInterest.Feature.Identifier.Value),
		)
		feature.Name = parsed.FeatureOfInterest.Feature.Name
	case parsed.FeatureOfInterest.Href != "":
		feature.Identifier = gml.NewCodeWithAuthority("", parsed.FeatureOfInterest.Href)
		feature.Name = parsed.FeatureOfInterest.Title
	default:
		return nil, errors.NewMissingParameterValue("featureOfInterest")
	}

	observation := &om.Observation{
		Constellation: &om.ObservationConstellation{
			Procedure:          &om.Procedure{Identifier: parsed.Procedure.Href},
			ObservableProperty: om.NewObservableProperty(parsed.ObservedProperty.Href, ""),
			FeatureOfInterest:  feature,
			ObservationType:    parsed.Type.Href,
		},
		Value: &om.SingleObservationValue{Time: phenTime, Value: value},
	}
	if parsed.Identifier.Value != "" {
		observation.Identifier = gml.NewCodeWithAuthority(
			parsed.Identifier.CodeSpace, strings.TrimSpace(parsed.Identifier.Value))
	}
	resultTime, err := decodeTime(parsed.ResultTime)
	if err != nil {
		return nil, err
	}
	if instant, ok := resultTime.(gml.Instant); ok {
		observation.ResultTime = &instant
	}
	return observation, nil
}

// decodeTime handles inline instants and periods. An href-only time property
// returns nil; the reference is resolved by the caller against the document.
func decodeTime(p timeProperty) (gml.Time, error) {
	switch {
	case p.Instant != nil:
		t, err := gml.ParseISO(strings.TrimSpace(p.Instant.TimePosition))
		if err != nil {
			return nil, errors.NewInvalidParameterValue("timePosition", p.Instant.TimePosition)
		}
		return gml.NewInstant(t), nil
	case p.Period != nil:
		start, err := gml.ParseISO(strings.TrimSpace(p.Period.BeginPosition))
		if err != nil {
			return nil, errors.NewInvalidParameterValue("beginPosition", p.Period.BeginPosition)
		}
		end, err := gml.ParseISO(strings.TrimSpace(p.Period.EndPosition))
		if err != nil {
			return nil, errors.NewInvalidParameterValue("endPosition", p.Period.EndPosition)
		}
		return gml.NewPeriod(start, end), nil
	default:
		return nil, nil
	}
}

func decodeResult(observationType string, result resultProperty) (om.Value, error) {
	text := strings.TrimSpace(result.Value)
	switch observationType {
	case om.ObsTypeMeasurement:
		q, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return om.Value{}, errors.NewInvalidParameterValue("result", text)
		}
		return om.NewQuantityValue(q, result.Uom), nil
	case om.ObsTypeCountObservation:
		n, err := strconv.Atoi(text)
		if err != nil {
			return om.Value{}, errors.NewInvalidParameterValue("result", text)
		}
		return om.NewCountValue(n), nil
	case om.ObsTypeTruthObservation:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return om.Value{}, errors.NewInvalidParameterValue("result", text)
		}
		return om.NewBooleanValue(b), nil
	case om.ObsTypeTextObservation:
		return om.NewTextValue(text), nil
	case om.ObsTypeCategoryObservation:
		return om.NewCategoryValue(text, result.Uom), nil
	default:
		return om.Value{}, errors.NewInvalidParameterValue("type", observationType)
	}
}

// Register adds all decoders to the registry.
func Register(registry *coding.Registry) error {
	if registry == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "decoder", "Register", "registry validation")
	}
	decoders := []coding.Decoder{
		GetCapabilitiesKVPDecoder{},
		GetObservationKVPDecoder{},
		DescribeSensorKVPDecoder{},
		ObservationXMLDecoder{},
	}
	for _, dec := range decoders {
		if err := registry.RegisterDecoder(dec); err != nil {
			return errors.Wrap(err, "decoder", "Register", "decoder registration")
		}
	}
	return nil
}
