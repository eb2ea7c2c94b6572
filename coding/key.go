package coding

import (
	"fmt"
	"reflect"
)

// DecoderKey identifies a decoder by the namespace, operation or element type
// it supports. Implementations are comparable values; equality is structural
// and keys participate in hashed lookup. Similarity orders candidate keys
// when a lookup matches more than one registration: 0 is an exact match,
// larger values are less specific, Incomparable means no match.
type DecoderKey interface {
	fmt.Stringer

	// Similarity scores this registered key against a lookup key.
	Similarity(other DecoderKey) int
}

// EncoderKey is the encoder-side counterpart of DecoderKey.
type EncoderKey interface {
	fmt.Stringer

	// Similarity scores this registered key against a lookup key.
	Similarity(other EncoderKey) int
}

// XMLNamespaceDecoderKey keys a decoder by the XML namespace of a document's
// root element plus the Go type of the payload handed to the decoder.
type XMLNamespaceDecoderKey struct {
	Namespace string
	Type      reflect.Type
}

// NewXMLNamespaceDecoderKey creates a key for the given namespace and payload
// prototype.
func NewXMLNamespaceDecoderKey(namespace string, payload any) XMLNamespaceDecoderKey {
	return XMLNamespaceDecoderKey{Namespace: namespace, Type: reflect.TypeOf(payload)}
}

// String implements fmt.Stringer.
func (k XMLNamespaceDecoderKey) String() string {
	return fmt.Sprintf("XMLNamespaceDecoderKey[namespace=%s, type=%v]", k.Namespace, k.Type)
}

// Similarity implements DecoderKey.
func (k XMLNamespaceDecoderKey) Similarity(other DecoderKey) int {
	o, ok := other.(XMLNamespaceDecoderKey)
	if !ok || k.Namespace != o.Namespace {
		return Incomparable
	}
	return TypeSimilarity(k.Type, o.Type)
}

// OperationDecoderKey keys a request decoder by (service, version, operation).
// Matching is exact; operations do not have a specificity hierarchy.
type OperationDecoderKey struct {
	Service   string
	Version   string
	Operation string
}

// String implements fmt.Stringer.
func (k OperationDecoderKey) String() string {
	return fmt.Sprintf("OperationDecoderKey[service=%s, version=%s, operation=%s]",
		k.Service, k.Version, k.Operation)
}

// Similarity implements DecoderKey.
func (k OperationDecoderKey) Similarity(other DecoderKey) int {
	if o, ok := other.(OperationDecoderKey); ok && k == o {
		return 0
	}
	return Incomparable
}

// XMLEncoderKey keys an encoder by the target XML namespace plus the Go type
// of the object being encoded.
type XMLEncoderKey struct {
	Namespace string
	Type      reflect.Type
}

// NewXMLEncoderKey creates a key for the given namespace and object
// prototype.
func NewXMLEncoderKey(namespace string, obj any) XMLEncoderKey {
	return XMLEncoderKey{Namespace: namespace, Type: reflect.TypeOf(obj)}
}

// String implements fmt.Stringer.
func (k XMLEncoderKey) String() string {
	return fmt.Sprintf("XMLEncoderKey[namespace=%s, type=%v]", k.Namespace, k.Type)
}

// Similarity implements EncoderKey.
func (k XMLEncoderKey) Similarity(other EncoderKey) int {
	o, ok := other.(XMLEncoderKey)
	if !ok || k.Namespace != o.Namespace {
		return Incomparable
	}
	return TypeSimilarity(k.Type, o.Type)
}

// DecoderKeysForElements builds one namespace key per payload prototype.
func DecoderKeysForElements(namespace string, elements ...any) []DecoderKey {
	keys := make([]DecoderKey, 0, len(elements))
	for _, e := range elements {
		keys = append(keys, NewXMLNamespaceDecoderKey(namespace, e))
	}
	return keys
}

// EncoderKeysForElements builds one namespace key per object prototype.
func EncoderKeysForElements(namespace string, elements ...any) []EncoderKey {
	keys := make([]EncoderKey, 0, len(elements))
	for _, e := range elements {
		keys = append(keys, NewXMLEncoderKey(namespace, e))
	}
	return keys
}

// OperationDecoderKeys builds one operation key per operation name.
func OperationDecoderKeys(service, version string, operations ...string) []DecoderKey {
	keys := make([]DecoderKey, 0, len(operations))
	for _, op := range operations {
		keys = append(keys, OperationDecoderKey{Service: service, Version: version, Operation: op})
	}
	return keys
}
