// Package om provides the in-memory observation model: the closed value
// union, observable properties, observation constellations, and the
// observation graph assembled for response generation. Observations are
// transient per-request objects; nothing in this package is shared between
// requests.
package om
