package coding

import "fmt"

// HelperKey enumerates the auxiliary encoding hints callers may pass to
// encoders. Encoders consult only the keys they understand and ignore the
// rest; this threads cross-cutting concerns through a polymorphic call
// without changing every encoder's signature.
type HelperKey string

const (
	// HelperGMLID assigns the given element id to the encoded fragment.
	HelperGMLID HelperKey = "GMLID"
	// HelperDocument requests the encoded fragment wrapped as a standalone
	// document.
	HelperDocument HelperKey = "DOCUMENT"
	// HelperVersion names the target service version.
	HelperVersion HelperKey = "VERSION"
	// HelperExistFOIInDoc marks a feature already rendered once in the
	// current document; encoders emit an href reference instead of a full
	// encoding.
	HelperExistFOIInDoc HelperKey = "EXIST_FOI_IN_DOC"
)

// Context carries per-call encoding state: the helper-value hints and the
// feature-id aliasing table that lets identical encoded features share one
// gml:id per document. Each encode call chain gets its own context, so
// concurrent encodes never share counters. Derived child contexts keep the
// aliasing table of the whole document while scoping helper overrides to one
// fragment.
type Context struct {
	helpers map[HelperKey]string
	aliases *featureAliases
}

// featureAliases is the document-wide feature-id table. Every context derived
// within one encode call chain points at the same instance.
type featureAliases struct {
	ids     map[string]string
	counter int
}

// NewContext creates an empty encoding context.
func NewContext() *Context {
	return &Context{
		helpers: make(map[HelperKey]string),
		aliases: &featureAliases{ids: make(map[string]string)},
	}
}

// WithHelper sets a helper value and returns the context for chaining.
func (c *Context) WithHelper(key HelperKey, value string) *Context {
	c.helpers[key] = value
	return c
}

// Derived returns a child context with the given helper set on top of a copy
// of this context's helpers. The feature-id aliasing table is shared with the
// parent; helper changes on the child never leak back.
func (c *Context) Derived(key HelperKey, value string) *Context {
	helpers := make(map[HelperKey]string, len(c.helpers)+1)
	for k, v := range c.helpers {
		helpers[k] = v
	}
	helpers[key] = value
	return &Context{helpers: helpers, aliases: c.aliases}
}

// Helper returns a helper value and whether it was set.
func (c *Context) Helper(key HelperKey) (string, bool) {
	v, ok := c.helpers[key]
	return v, ok
}

// HelperSet reports whether the helper key is present.
func (c *Context) HelperSet(key HelperKey) bool {
	_, ok := c.helpers[key]
	return ok
}

// FeatureID returns the gml:id assigned to a feature identifier within this
// document, allocating a fresh one on first use. The second result reports
// whether the feature was seen before, i.e. whether the caller should emit an
// href reference instead of the full feature.
func (c *Context) FeatureID(identifier string) (string, bool) {
	if id, ok := c.aliases.ids[identifier]; ok {
		return id, true
	}
	c.aliases.counter++
	id := fmt.Sprintf("sf_%d", c.aliases.counter)
	c.aliases.ids[identifier] = id
	return id, false
}
