package coding

import "reflect"

// Incomparable is the sentinel similarity for types with no assignability
// relationship.
const Incomparable = -1

// TypeSimilarity computes a non-negative distance between a declared
// supported type and a candidate payload type: 0 when identical, increasing
// by one per embedding or interface hop, Incomparable when the candidate is
// not assignable to the declaration. Pointer, slice and array types compare
// by their element types. The registry uses the metric to prefer the most
// specific applicable codec when several supported-type declarations are
// compatible with the actual payload type.
func TypeSimilarity(declared, candidate reflect.Type) int {
	if declared == nil || candidate == nil {
		return Incomparable
	}
	if declared == candidate {
		return 0
	}
	switch declared.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		if candidate.Kind() == declared.Kind() {
			return TypeSimilarity(declared.Elem(), candidate.Elem())
		}
	}
	if d := embeddingDistance(candidate, declared, map[reflect.Type]bool{}); d >= 0 {
		return d
	}
	// No embedding path. Struct embedding never makes the embedding type
	// assignable to the embedded one, so assignability only describes the
	// interface-satisfaction fallback: one hop away.
	if candidate.AssignableTo(declared) {
		return 1
	}
	return Incomparable
}

// embeddingDistance walks the embedded-field graph of t looking for target,
// counting hops. Returns Incomparable when no path exists.
func embeddingDistance(t, target reflect.Type, seen map[reflect.Type]bool) int {
	if t == target {
		return 0
	}
	if seen[t] {
		return Incomparable
	}
	seen[t] = true

	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return Incomparable
	}
	best := Incomparable
	for i := 0; i < base.NumField(); i++ {
		f := base.Field(i)
		if !f.Anonymous {
			continue
		}
		if d := embeddingDistance(f.Type, target, seen); d >= 0 {
			if best < 0 || d+1 < best {
				best = d + 1
			}
		}
	}
	return best
}
