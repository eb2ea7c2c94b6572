// Package codecregistry wires all codec implementations into one registry.
// Decoders cover the KVP operation bindings and the OM 2.0 observation
// document; encoders cover GML times, sampling features, SWE data arrays and
// OM observations.
package codecregistry

import (
	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/decoder"
	"github.com/geomatico/52n-sos-4.0-sub001/encoder"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// Register registers all codecs with the provided registry. The time format
// is applied to every encoder producing timestamps; empty means the default
// ISO form.
func Register(registry *coding.Registry, timeFormat string) error {
	if registry == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "codecregistry", "Register", "registry validation")
	}
	if err := decoder.Register(registry); err != nil {
		return errors.Wrap(err, "codecregistry", "Register", "decoder registration")
	}
	if err := encoder.Register(registry, timeFormat); err != nil {
		return errors.Wrap(err, "codecregistry", "Register", "encoder registration")
	}
	return nil
}
