// Package ogc holds the OGC vocabulary shared by encoders and decoders:
// XML namespaces, service identifiers and operation names.
package ogc

// XML namespaces of the supported encodings.
const (
	NamespaceGML   = "http://www.opengis.net/gml/3.2"
	NamespaceOM    = "http://www.opengis.net/om/2.0"
	NamespaceSWE   = "http://www.opengis.net/swe/2.0"
	NamespaceSOS   = "http://www.opengis.net/sos/2.0"
	NamespaceSAMS  = "http://www.opengis.net/samplingSpatial/2.0"
	NamespaceSF    = "http://www.opengis.net/sampling/2.0"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceOWS   = "http://www.opengis.net/ows/1.1"
)

// Service identification.
const (
	ServiceSOS = "SOS"
	Version20  = "2.0.0"
	Version10  = "1.0.0"
)

// Operation names handled by the request decoders.
const (
	OperationGetCapabilities = "GetCapabilities"
	OperationGetObservation  = "GetObservation"
	OperationDescribeSensor  = "DescribeSensor"
)

// NilUnknown is the nil reason used for unpopulated sampled features.
const NilUnknown = "http://www.opengis.net/def/nil/OGC/0/unknown"
