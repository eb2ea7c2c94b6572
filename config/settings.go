package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// Settings holds the service-wide observation encoding configuration.
type Settings struct {
	// TokenSeparator separates tokens within one array block.
	TokenSeparator string `json:"token_separator"`
	// TupleSeparator separates blocks of an array value.
	TupleSeparator string `json:"tuple_separator"`
	// DecimalSeparator is carried in text encodings for clients; tokens are
	// always produced with '.' internally.
	DecimalSeparator string `json:"decimal_separator"`
	// NoDataValue substitutes missing values in result matrices.
	NoDataValue string `json:"no_data_value"`
	// ResponseTimeFormat overrides the default ISO time format of responses.
	ResponseTimeFormat string `json:"response_time_format,omitempty"`
	// MinFreeHeapBytes is the free-heap threshold below which observation
	// assembly aborts instead of risking exhaustion.
	MinFreeHeapBytes uint64 `json:"min_free_heap_bytes"`
	// SupportsQuality toggles quality resolution during reconciliation.
	SupportsQuality bool `json:"supports_quality"`
	// GeneratedIdentifierPrefix tags synthesized observation identifiers;
	// identifiers carrying it are never surfaced to clients.
	GeneratedIdentifierPrefix string `json:"generated_identifier_prefix"`
}

// Default returns the settings the service ships with.
func Default() Settings {
	return Settings{
		TokenSeparator:            ",",
		TupleSeparator:            ";",
		DecimalSeparator:          ".",
		NoDataValue:               "noData",
		MinFreeHeapBytes:          256000,
		SupportsQuality:           true,
		GeneratedIdentifierPrefix: "generated_",
	}
}

// settingsSchema validates settings documents before they are applied.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "token_separator": {"type": "string", "minLength": 1},
    "tuple_separator": {"type": "string", "minLength": 1},
    "decimal_separator": {"type": "string", "minLength": 1, "maxLength": 1},
    "no_data_value": {"type": "string", "minLength": 1},
    "response_time_format": {"type": "string"},
    "min_free_heap_bytes": {"type": "integer", "minimum": 0},
    "supports_quality": {"type": "boolean"},
    "generated_identifier_prefix": {"type": "string"}
  },
  "additionalProperties": false
}`

// Validate checks the settings for internal consistency.
func (s Settings) Validate() error {
	if s.TokenSeparator == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "config", "Validate", "token separator validation")
	}
	if s.TupleSeparator == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "config", "Validate", "tuple separator validation")
	}
	if s.TokenSeparator == s.TupleSeparator {
		return errors.Wrap(errors.ErrInvalidConfig, "config", "Validate", "distinct separator validation")
	}
	if s.NoDataValue == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "config", "Validate", "no-data value validation")
	}
	if strings.Contains(s.NoDataValue, s.TokenSeparator) || strings.Contains(s.NoDataValue, s.TupleSeparator) {
		return errors.Wrap(errors.ErrInvalidConfig, "config", "Validate", "no-data separator clash validation")
	}
	return nil
}

// Parse validates a JSON settings document against the schema and unmarshals
// it over the defaults, so partial documents only override what they name.
func Parse(data []byte) (Settings, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(settingsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return Settings{}, errors.Wrap(err, "config", "Parse", "schema validation")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return Settings{}, errors.Wrap(
			fmt.Errorf("%s: %w", strings.Join(msgs, "; "), errors.ErrInvalidConfig),
			"config", "Parse", "schema validation")
	}
	settings := Default()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, errors.Wrap(err, "config", "Parse", "settings unmarshal")
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Load reads and parses a settings file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "config", "Load", "settings file read")
	}
	return Parse(data)
}

// SafeSettings provides thread-safe access to the settings with atomic,
// validated updates. Readers during an update observe either the previous or
// the new settings, never a mix.
type SafeSettings struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSafeSettings wraps an initial settings value.
func NewSafeSettings(s Settings) *SafeSettings {
	return &SafeSettings{settings: s}
}

// Get returns the current settings.
func (ss *SafeSettings) Get() Settings {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.settings
}

// Update atomically replaces the settings after validation.
func (ss *SafeSettings) Update(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings = s
	return nil
}
