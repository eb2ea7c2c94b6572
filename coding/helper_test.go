package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

func TestDecodeXMLDocument_MissRaisesTypedError(t *testing.T) {
	reg := NewRegistry()
	doc, err := ParseXMLDocument([]byte(`<obs:GetObservation xmlns:obs="http://example.org/unknown"/>`))
	require.NoError(t, err)

	_, err = DecodeXMLDocument(reg, doc)
	var miss *errors.NoDecoderForKeyError
	require.ErrorAs(t, err, &miss)
	assert.Contains(t, miss.Error(), "http://example.org/unknown")
}

func TestDecodeXMLString_WrapsParserError(t *testing.T) {
	reg := NewRegistry()
	_, err := DecodeXMLString(reg, "<unclosed")

	var decErr *errors.XMLDecodingError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "<unclosed", decErr.XML, "the offending string travels with the error")
	assert.Error(t, decErr.Err)
}

func TestParseXMLDocument_SkipsLeadingComment(t *testing.T) {
	doc, err := ParseXMLDocument([]byte(
		`<!-- generated --><obs:Observation xmlns:obs="http://www.opengis.net/om/2.0"/>`))
	require.NoError(t, err)
	assert.Equal(t, "http://www.opengis.net/om/2.0", doc.Namespace())
}

func TestDecodeXMLDocument_RoutesByNamespace(t *testing.T) {
	reg := NewRegistry()
	decoder := &stubDecoder{
		keys:   []DecoderKey{NewXMLNamespaceDecoderKey(testNamespace, &XMLDocument{})},
		result: "observation",
	}
	require.NoError(t, reg.RegisterDecoder(decoder))

	doc, err := ParseXMLDocument([]byte(`<om:OM_Observation xmlns:om="` + testNamespace + `"/>`))
	require.NoError(t, err)

	decoded, err := DecodeXMLDocument(reg, doc)
	require.NoError(t, err)
	assert.Equal(t, "observation", decoded)
}

func TestEncodeObject_MissRaisesTypedError(t *testing.T) {
	reg := NewRegistry()
	_, err := EncodeObject(reg, testNamespace, struct{}{}, NewContext())

	var miss *errors.NoEncoderForKeyError
	require.ErrorAs(t, err, &miss)
}

func TestContext_FeatureAliasing(t *testing.T) {
	ctx := NewContext()

	id1, seen := ctx.FeatureID("http://example.org/feature/1")
	assert.False(t, seen)
	assert.Equal(t, "sf_1", id1)

	again, seen := ctx.FeatureID("http://example.org/feature/1")
	assert.True(t, seen, "second render of the same feature must alias")
	assert.Equal(t, id1, again)

	id2, seen := ctx.FeatureID("http://example.org/feature/2")
	assert.False(t, seen)
	assert.NotEqual(t, id1, id2)

	// A fresh context starts its own counter; contexts are never shared.
	other := NewContext()
	otherID, _ := other.FeatureID("http://example.org/feature/9")
	assert.Equal(t, "sf_1", otherID)
}

func TestContext_DerivedSharesAliasingScopesHelpers(t *testing.T) {
	parent := NewContext().WithHelper(HelperVersion, "2.0.0")
	parentID, _ := parent.FeatureID("http://example.org/feature/1")

	child := parent.Derived(HelperGMLID, "pt_1")

	// the child keeps the parent's helpers and adds its own
	v, ok := child.Helper(HelperVersion)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", v)
	id, ok := child.Helper(HelperGMLID)
	require.True(t, ok)
	assert.Equal(t, "pt_1", id)

	// the child's helper never leaks back to the parent
	assert.False(t, parent.HelperSet(HelperGMLID))

	// feature aliasing spans the document in both directions
	childID, seen := child.FeatureID("http://example.org/feature/1")
	assert.True(t, seen)
	assert.Equal(t, parentID, childID)

	fresh, seen := child.FeatureID("http://example.org/feature/2")
	assert.False(t, seen)
	viaParent, seen := parent.FeatureID("http://example.org/feature/2")
	assert.True(t, seen)
	assert.Equal(t, fresh, viaParent)
}

func TestContext_HelperValues(t *testing.T) {
	ctx := NewContext().
		WithHelper(HelperVersion, "2.0.0").
		WithHelper(HelperDocument, "true")

	v, ok := ctx.Helper(HelperVersion)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", v)
	assert.True(t, ctx.HelperSet(HelperDocument))
	assert.False(t, ctx.HelperSet(HelperGMLID))
}
