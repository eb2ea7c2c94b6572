package coding

import (
	"fmt"
	"sort"
	"sync"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// Decoder converts an external payload (parsed XML document, KVP parameter
// map) into the internal request or model object. Implementations declare
// their supported keys at construction.
type Decoder interface {
	// DecoderKeys returns the keys this decoder is registered under.
	DecoderKeys() []DecoderKey

	// Decode converts the payload. Structural failures propagate as coded
	// exceptions; a decoder never returns (nil, nil).
	Decode(payload any) (any, error)
}

// Encoder converts an internal object into its external representation,
// consulting the per-call context for the helper values it understands.
type Encoder interface {
	// EncoderKeys returns the keys this encoder is registered under.
	EncoderKeys() []EncoderKey

	// Encode converts the object. Structural failures propagate as coded
	// exceptions; an encoder never returns (nil, nil).
	Encode(obj any, ctx *Context) (any, error)
}

// Instrumentation receives registry lookup outcomes. The metric package
// provides a prometheus-backed implementation; a nil instrumentation is a
// no-op.
type Instrumentation interface {
	LookupHit(kind string)
	LookupMiss(kind string)
}

// Registry holds the decoder and encoder indexes. Registration happens at
// startup; lookups are concurrent and lock-free in spirit, guarded by a
// read lock only. The registry never fails a lookup with an error; absence
// is a typed failure at the dispatch helper, not here.
type Registry struct {
	mu       sync.RWMutex
	decoders map[DecoderKey][]Decoder
	encoders map[EncoderKey][]Encoder
	instr    Instrumentation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[DecoderKey][]Decoder),
		encoders: make(map[EncoderKey][]Encoder),
	}
}

// SetInstrumentation attaches a lookup observer. Call before serving traffic.
func (r *Registry) SetInstrumentation(instr Instrumentation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instr = instr
}

// RegisterDecoder adds a decoder under every key it declares. A decoder
// declaring no keys is a configuration error.
func (r *Registry) RegisterDecoder(d Decoder) error {
	if d == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "Registry", "RegisterDecoder", "decoder validation")
	}
	keys := d.DecoderKeys()
	if len(keys) == 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "Registry", "RegisterDecoder", "decoder key validation")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		r.decoders[key] = append(r.decoders[key], d)
	}
	return nil
}

// RegisterEncoder adds an encoder under every key it declares.
func (r *Registry) RegisterEncoder(e Encoder) error {
	if e == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "Registry", "RegisterEncoder", "encoder validation")
	}
	keys := e.EncoderKeys()
	if len(keys) == 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "Registry", "RegisterEncoder", "encoder key validation")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		r.encoders[key] = append(r.encoders[key], e)
	}
	return nil
}

// Decoder resolves the best-matching decoder for a key. Exact key matches
// win; otherwise every registration is scored against the lookup key and the
// smallest non-negative similarity is chosen, ties broken by key string for
// determinism. The second result is false when nothing matches.
func (r *Registry) Decoder(key DecoderKey) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ds, ok := r.decoders[key]; ok && len(ds) > 0 {
		r.hit("decoder")
		return ds[0], true
	}
	type candidate struct {
		decoder    Decoder
		similarity int
		keyString  string
	}
	var candidates []candidate
	for registered, ds := range r.decoders {
		s := registered.Similarity(key)
		if s < 0 {
			continue
		}
		for _, d := range ds {
			candidates = append(candidates, candidate{decoder: d, similarity: s, keyString: registered.String()})
		}
	}
	if len(candidates) == 0 {
		r.miss("decoder")
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity < candidates[j].similarity
		}
		return candidates[i].keyString < candidates[j].keyString
	})
	r.hit("decoder")
	return candidates[0].decoder, true
}

// Encoder resolves the best-matching encoder for a key, with the same
// resolution rules as Decoder.
func (r *Registry) Encoder(key EncoderKey) (Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if es, ok := r.encoders[key]; ok && len(es) > 0 {
		r.hit("encoder")
		return es[0], true
	}
	type candidate struct {
		encoder    Encoder
		similarity int
		keyString  string
	}
	var candidates []candidate
	for registered, es := range r.encoders {
		s := registered.Similarity(key)
		if s < 0 {
			continue
		}
		for _, e := range es {
			candidates = append(candidates, candidate{encoder: e, similarity: s, keyString: registered.String()})
		}
	}
	if len(candidates) == 0 {
		r.miss("encoder")
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity < candidates[j].similarity
		}
		return candidates[i].keyString < candidates[j].keyString
	})
	r.hit("encoder")
	return candidates[0].encoder, true
}

// Reload replaces the registry content atomically. In-flight lookups observe
// either the previous or the new codec set; a partially-populated index is
// never visible. The swap only happens when every registration validates.
func (r *Registry) Reload(decoders []Decoder, encoders []Encoder) error {
	newDecoders := make(map[DecoderKey][]Decoder)
	for _, d := range decoders {
		if d == nil || len(d.DecoderKeys()) == 0 {
			return errors.Wrap(errors.ErrInvalidConfig, "Registry", "Reload", "decoder validation")
		}
		for _, key := range d.DecoderKeys() {
			newDecoders[key] = append(newDecoders[key], d)
		}
	}
	newEncoders := make(map[EncoderKey][]Encoder)
	for _, e := range encoders {
		if e == nil || len(e.EncoderKeys()) == 0 {
			return errors.Wrap(errors.ErrInvalidConfig, "Registry", "Reload", "encoder validation")
		}
		for _, key := range e.EncoderKeys() {
			newEncoders[key] = append(newEncoders[key], e)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders = newDecoders
	r.encoders = newEncoders
	return nil
}

// DecoderCount returns the number of registered decoder keys.
func (r *Registry) DecoderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decoders)
}

// EncoderCount returns the number of registered encoder keys.
func (r *Registry) EncoderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.encoders)
}

func (r *Registry) hit(kind string) {
	if r.instr != nil {
		r.instr.LookupHit(kind)
	}
}

func (r *Registry) miss(kind string) {
	if r.instr != nil {
		r.instr.LookupMiss(kind)
	}
}

// String summarizes the registry for logs.
func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("Registry[decoderKeys=%d, encoderKeys=%d]", len(r.decoders), len(r.encoders))
}
