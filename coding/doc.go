// Package coding provides the codec registry and dispatch layer: structural
// decoder/encoder keys, a thread-safe registry resolving the best-matching
// implementation for a key, the dispatch helpers deriving keys from payloads,
// and the per-call encoding context that threads cross-cutting hints (id
// generation, document mode, feature aliasing) through polymorphic encode
// calls.
//
// The registry is populated once at startup by explicit registration calls
// (see the codecregistry package) and read concurrently afterwards. A reload
// replaces its content atomically; readers observe either the old or the new
// codec set, never a partially-populated one.
package coding
