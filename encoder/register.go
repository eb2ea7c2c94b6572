package encoder

import (
	"github.com/geomatico/52n-sos-4.0-sub001/coding"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// Register adds all encoders to the registry. The observation encoder keeps a
// reference to the registry to dispatch its child fragments.
func Register(registry *coding.Registry, timeFormat string) error {
	if registry == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "encoder", "Register", "registry validation")
	}
	encoders := []coding.Encoder{
		TimeEncoder{TimeFormat: timeFormat},
		FeatureEncoder{},
		DataArrayEncoder{},
		ObservationEncoder{Registry: registry, TimeFormat: timeFormat},
	}
	for _, enc := range encoders {
		if err := registry.RegisterEncoder(enc); err != nil {
			return errors.Wrap(err, "encoder", "Register", "encoder registration")
		}
	}
	return nil
}
