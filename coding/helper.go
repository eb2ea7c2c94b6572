package coding

import (
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// DecodeXMLDocument derives the lookup key from the document's root
// namespace, resolves a decoder and invokes it. A registry miss is raised as
// NoDecoderForKeyError; decoder failures propagate unchanged.
func DecodeXMLDocument(reg *Registry, doc *XMLDocument) (any, error) {
	key := NewXMLNamespaceDecoderKey(doc.Namespace(), doc)
	decoder, ok := reg.Decoder(key)
	if !ok {
		return nil, &errors.NoDecoderForKeyError{Key: key}
	}
	decoded, err := decoder.Decode(doc)
	if err != nil {
		return nil, err
	}
	if decoded == nil {
		return nil, errors.NewNoApplicableCode(nil,
			"decoder for key '%s' returned an unsupported response", key)
	}
	return decoded, nil
}

// DecodeXMLString parses the string into a document first. A parse failure is
// wrapped into an XMLDecodingError carrying the offending string, never
// surfaced as a raw parser error.
func DecodeXMLString(reg *Registry, s string) (any, error) {
	doc, err := ParseXMLDocument([]byte(s))
	if err != nil {
		return nil, &errors.XMLDecodingError{XML: s, Err: err}
	}
	return DecodeXMLDocument(reg, doc)
}

// DecodeOperationRequest resolves a request decoder registered under the
// (service, version, operation) key and hands it the KVP parameter map.
func DecodeOperationRequest(reg *Registry, service, version, operation string, parameters map[string]string) (any, error) {
	key := OperationDecoderKey{Service: service, Version: version, Operation: operation}
	decoder, ok := reg.Decoder(key)
	if !ok {
		return nil, &errors.NoDecoderForKeyError{Key: key}
	}
	return decoder.Decode(parameters)
}

// EncodeObject builds an encoder key from the namespace and the object's
// runtime type, resolves an encoder and invokes it. A registry miss is
// raised as NoEncoderForKeyError.
func EncodeObject(reg *Registry, namespace string, obj any, ctx *Context) (any, error) {
	key := NewXMLEncoderKey(namespace, obj)
	encoder, ok := reg.Encoder(key)
	if !ok {
		return nil, &errors.NoEncoderForKeyError{Key: key}
	}
	if ctx == nil {
		ctx = NewContext()
	}
	encoded, err := encoder.Encode(obj, ctx)
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, errors.NewNoApplicableCode(nil,
			"encoding of type %T using namespace key '%s' failed", obj, namespace)
	}
	return encoded, nil
}
