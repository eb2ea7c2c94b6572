package coding

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

const testNamespace = "http://www.opengis.net/om/2.0"

type stubDecoder struct {
	keys   []DecoderKey
	result any
}

func (d *stubDecoder) DecoderKeys() []DecoderKey { return d.keys }

func (d *stubDecoder) Decode(any) (any, error) { return d.result, nil }

type stubEncoder struct {
	keys   []EncoderKey
	result any
}

func (e *stubEncoder) EncoderKeys() []EncoderKey { return e.keys }

func (e *stubEncoder) Encode(any, *Context) (any, error) { return e.result, nil }

func TestRegistry_RoundTrip(t *testing.T) {
	reg := NewRegistry()
	key := OperationDecoderKey{Service: "SOS", Version: "2.0.0", Operation: "GetObservation"}
	decoder := &stubDecoder{keys: []DecoderKey{key}, result: "decoded"}
	require.NoError(t, reg.RegisterDecoder(decoder))

	got, ok := reg.Decoder(key)
	require.True(t, ok)
	assert.Same(t, decoder, got.(*stubDecoder))

	encKey := NewXMLEncoderKey(testNamespace, "")
	encoder := &stubEncoder{keys: []EncoderKey{encKey}, result: "encoded"}
	require.NoError(t, reg.RegisterEncoder(encoder))

	gotEnc, ok := reg.Encoder(encKey)
	require.True(t, ok)
	assert.Same(t, encoder, gotEnc.(*stubEncoder))
}

func TestRegistry_MissReturnsNotFound(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Decoder(OperationDecoderKey{Service: "SOS", Version: "1.0.0", Operation: "GetCapabilities"})
	assert.False(t, ok, "missing decoder must be a plain not-found, never an error")

	_, ok = reg.Encoder(NewXMLEncoderKey(testNamespace, 42))
	assert.False(t, ok)
}

func TestRegistry_MultipleKeysSameInstance(t *testing.T) {
	reg := NewRegistry()
	keys := OperationDecoderKeys("SOS", "2.0.0", "GetObservation", "GetObservationById")
	decoder := &stubDecoder{keys: keys}
	require.NoError(t, reg.RegisterDecoder(decoder))

	for _, key := range keys {
		got, ok := reg.Decoder(key)
		require.True(t, ok, "key %s", key)
		assert.Same(t, decoder, got.(*stubDecoder))
	}
}

func TestRegistry_RejectsEmptyKeySet(t *testing.T) {
	reg := NewRegistry()
	err := reg.RegisterDecoder(&stubDecoder{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

type baseValue struct{}

type derivedValue struct{ baseValue }

type deeplyDerived struct{ derivedValue }

func TestRegistry_MostSpecificEncoderWins(t *testing.T) {
	reg := NewRegistry()
	forBase := &stubEncoder{keys: []EncoderKey{NewXMLEncoderKey(testNamespace, baseValue{})}}
	forDerived := &stubEncoder{keys: []EncoderKey{NewXMLEncoderKey(testNamespace, derivedValue{})}}
	require.NoError(t, reg.RegisterEncoder(forBase))
	require.NoError(t, reg.RegisterEncoder(forDerived))

	got, ok := reg.Encoder(NewXMLEncoderKey(testNamespace, derivedValue{}))
	require.True(t, ok)
	assert.Same(t, forDerived, got.(*stubEncoder), "exact type match must beat the embedded base")

	got, ok = reg.Encoder(NewXMLEncoderKey(testNamespace, deeplyDerived{}))
	require.True(t, ok)
	assert.Same(t, forDerived, got.(*stubEncoder), "closest embedding hop must win")
}

func TestRegistry_ReloadSwapsAtomically(t *testing.T) {
	reg := NewRegistry()
	oldKey := OperationDecoderKey{Service: "SOS", Version: "1.0.0", Operation: "GetObservation"}
	require.NoError(t, reg.RegisterDecoder(&stubDecoder{keys: []DecoderKey{oldKey}}))

	newKey := OperationDecoderKey{Service: "SOS", Version: "2.0.0", Operation: "GetObservation"}
	newDecoder := &stubDecoder{keys: []DecoderKey{newKey}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				// Readers may see the old or the new set; either way
				// the registry stays internally consistent.
				reg.Decoder(oldKey)
				reg.Decoder(newKey)
			}
		}()
	}
	require.NoError(t, reg.Reload([]Decoder{newDecoder}, nil))
	wg.Wait()

	_, ok := reg.Decoder(oldKey)
	assert.False(t, ok, "reload must drop the previous codec set")
	got, ok := reg.Decoder(newKey)
	require.True(t, ok)
	assert.Same(t, newDecoder, got.(*stubDecoder))
}

func TestTypeSimilarity(t *testing.T) {
	base := reflect.TypeOf(baseValue{})
	derived := reflect.TypeOf(derivedValue{})
	deep := reflect.TypeOf(deeplyDerived{})
	unrelated := reflect.TypeOf("")

	assert.Equal(t, 0, TypeSimilarity(base, base), "identical types score zero")
	assert.Equal(t, Incomparable, TypeSimilarity(base, unrelated))
	assert.Equal(t, Incomparable, TypeSimilarity(derived, base), "embedding is directional")

	direct := TypeSimilarity(base, derived)
	grandparent := TypeSimilarity(base, deep)
	require.GreaterOrEqual(t, direct, 0)
	require.GreaterOrEqual(t, grandparent, 0)
	assert.Less(t, direct, grandparent, "direct embedding must score closer than two hops")
}

func TestTypeSimilarity_EmbeddingHopCounts(t *testing.T) {
	base := reflect.TypeOf(baseValue{})
	derived := reflect.TypeOf(derivedValue{})
	deep := reflect.TypeOf(deeplyDerived{})

	assert.Equal(t, 1, TypeSimilarity(base, derived), "one embedding hop")
	assert.Equal(t, 2, TypeSimilarity(base, deep), "two embedding hops")
	assert.Equal(t, 1, TypeSimilarity(derived, deep))
}

func TestRegistry_BaseTypeCodecResolvesForEmbeddingType(t *testing.T) {
	reg := NewRegistry()
	forBase := &stubEncoder{keys: []EncoderKey{NewXMLEncoderKey(testNamespace, baseValue{})}}
	require.NoError(t, reg.RegisterEncoder(forBase))

	// the only registered encoder declares the embedded base; a payload of
	// the embedding type must still resolve to it
	got, ok := reg.Encoder(NewXMLEncoderKey(testNamespace, derivedValue{}))
	require.True(t, ok)
	assert.Same(t, forBase, got.(*stubEncoder))

	got, ok = reg.Encoder(NewXMLEncoderKey(testNamespace, deeplyDerived{}))
	require.True(t, ok)
	assert.Same(t, forBase, got.(*stubEncoder))
}

func TestTypeSimilarity_SliceRecursesOnElement(t *testing.T) {
	baseSlice := reflect.TypeOf([]baseValue{})
	derivedSlice := reflect.TypeOf([]derivedValue{})
	assert.Equal(t, TypeSimilarity(reflect.TypeOf(baseValue{}), reflect.TypeOf(derivedValue{})),
		TypeSimilarity(baseSlice, derivedSlice))
}

type exampleInterface interface{ Example() }

type exampleImpl struct{}

func (exampleImpl) Example() {}

func TestTypeSimilarity_InterfaceSatisfaction(t *testing.T) {
	iface := reflect.TypeOf((*exampleInterface)(nil)).Elem()
	impl := reflect.TypeOf(exampleImpl{})
	assert.Equal(t, 1, TypeSimilarity(iface, impl), "direct interface satisfaction is one hop")
	assert.Equal(t, Incomparable, TypeSimilarity(iface, reflect.TypeOf(baseValue{})))
}
