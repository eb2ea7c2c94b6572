// Package reconcile assembles in-memory observations from persisted value
// rows and prepares them for encoding: it reconstitutes typed observations,
// folds mergeable ones into generic observations, and unfolds array-valued
// observations back into single observations on the write path.
package reconcile

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/geomatico/52n-sos-4.0-sub001/config"
	"github.com/geomatico/52n-sos-4.0-sub001/errors"
	"github.com/geomatico/52n-sos-4.0-sub001/gml"
	"github.com/geomatico/52n-sos-4.0-sub001/logging"
	"github.com/geomatico/52n-sos-4.0-sub001/metric"
	"github.com/geomatico/52n-sos-4.0-sub001/om"
	"github.com/geomatico/52n-sos-4.0-sub001/swe"
	"github.com/geomatico/52n-sos-4.0-sub001/swecodec"
)

// Row is one persisted observation value as read from storage, denormalized
// with the metadata needed to rebuild the observation. SeriesID groups rows
// that belong to one stored array observation and must be folded back
// together instead of surfacing as separate observations.
type Row struct {
	ObservationID string
	Identifier    string
	CodeSpace     string

	ProcedureID         string
	ProcedureFormat     string
	PropertyID          string
	PropertyDescription string
	FeatureID           string
	FeatureCodeSpace    string
	FeatureName         string
	Offerings           []string
	ObservationType     string

	PhenomenonStart time.Time
	PhenomenonEnd   time.Time
	ResultTime      *time.Time
	ValidStart      *time.Time
	ValidEnd        *time.Time

	Value     om.Value
	Qualities []om.Quality

	SeriesID string
}

// PhenomenonTime returns the row's phenomenon time, an instant when start and
// end coincide.
func (r *Row) PhenomenonTime() gml.Time {
	if r.PhenomenonEnd.IsZero() || r.PhenomenonEnd.Equal(r.PhenomenonStart) {
		return gml.NewInstant(r.PhenomenonStart)
	}
	return gml.NewPeriod(r.PhenomenonStart, r.PhenomenonEnd)
}

// FeatureResolver loads the full feature of interest for an identifier. The
// engine falls back to the row's feature columns when no resolver is set or
// the resolver returns nil.
type FeatureResolver interface {
	Feature(ctx context.Context, identifier string) (*om.FeatureOfInterest, error)
}

// TemplateResolver looks up the result template registered for a procedure
// and offering. A nil template without error means none is registered.
type TemplateResolver interface {
	Template(ctx context.Context, procedure, offering string) (*swe.ResultTemplate, error)
}

// Engine reconstitutes observations from rows. One engine is shared across
// requests; all per-request state lives in the call frame, so concurrent
// calls never observe each other's memoization.
type Engine struct {
	Settings  config.Settings
	Metrics   *metric.Metrics
	Features  FeatureResolver
	Templates TemplateResolver

	log      *logging.Logger
	freeHeap func() uint64
}

// NewEngine creates an engine. Metrics and logger may be nil; resolvers are
// optional.
func NewEngine(settings config.Settings, m *metric.Metrics, features FeatureResolver,
	templates TemplateResolver, log *logging.Logger) *Engine {
	if m == nil {
		m = metric.New()
	}
	if log == nil {
		log = logging.NewLogger("reconcile", nil, nil)
	}
	return &Engine{
		Settings:  settings,
		Metrics:   m,
		Features:  features,
		Templates: templates,
		log:       log,
		freeHeap:  freeHeapBytes,
	}
}

func freeHeapBytes() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapSys - ms.HeapInuse
}

// memo holds the per-call identity maps. Rows of one query repeat the same
// procedures, properties and features thousands of times; memoization keeps
// one instance per identifier so the unit back-fill on a property is visible
// to every observation referencing it.
type memo struct {
	procedures     map[string]*om.Procedure
	properties     map[string]*om.ObservableProperty
	features       map[string]*om.FeatureOfInterest
	constellations map[string]*om.ObservationConstellation
	templates      map[string]*swe.ResultTemplate
	series         map[string]*om.Observation
}

func newMemo() *memo {
	return &memo{
		procedures:     make(map[string]*om.Procedure),
		properties:     make(map[string]*om.ObservableProperty),
		features:       make(map[string]*om.FeatureOfInterest),
		constellations: make(map[string]*om.ObservationConstellation),
		templates:      make(map[string]*swe.ResultTemplate),
		series:         make(map[string]*om.Observation),
	}
}

// Reconstitute turns persisted rows into observations, preserving row order.
// Rows sharing a SeriesID fold into one array-valued observation. The free
// heap is checked before every row; falling under the configured minimum
// aborts the pass with a size-limit exception instead of exhausting memory.
func (e *Engine) Reconstitute(ctx context.Context, rows []*Row) ([]*om.Observation, error) {
	timer := time.Now()
	defer func() {
		e.Metrics.ReconcileDuration.Observe(time.Since(timer).Seconds())
	}()

	m := newMemo()
	observations := make([]*om.Observation, 0, len(rows))
	for _, row := range rows {
		if err := e.checkFreeHeap(); err != nil {
			return nil, err
		}
		if row.SeriesID != "" {
			if existing, ok := m.series[row.SeriesID]; ok {
				if err := e.foldIntoSeries(existing, row); err != nil {
					return nil, err
				}
				continue
			}
		}
		obs, err := e.observationFromRow(ctx, m, row)
		if err != nil {
			return nil, err
		}
		if row.SeriesID != "" {
			m.series[row.SeriesID] = obs
		}
		observations = append(observations, obs)
		e.Metrics.ObservationsReconstituted.Inc()
	}
	return observations, nil
}

func (e *Engine) checkFreeHeap() error {
	if e.Settings.MinFreeHeapBytes == 0 {
		return nil
	}
	free := e.freeHeap()
	if free >= e.Settings.MinFreeHeapBytes {
		return nil
	}
	e.Metrics.HeapGuardTrips.Inc()
	e.log.Warn("aborting observation assembly, free heap below minimum",
		"free_bytes", free, "min_bytes", e.Settings.MinFreeHeapBytes)
	return errors.NewResponseExceedsSizeLimit(
		"query result is too large, free heap %d below minimum %d", free, e.Settings.MinFreeHeapBytes)
}

func (e *Engine) observationFromRow(ctx context.Context, m *memo, row *Row) (*om.Observation, error) {
	procedure, ok := m.procedures[row.ProcedureID]
	if !ok {
		procedure = &om.Procedure{Identifier: row.ProcedureID, DescriptionFormat: row.ProcedureFormat}
		m.procedures[row.ProcedureID] = procedure
	}

	property, ok := m.properties[row.PropertyID]
	if !ok {
		property = om.NewObservableProperty(row.PropertyID, row.PropertyDescription)
		m.properties[row.PropertyID] = property
	}
	property.CheckOrSetUnit(row.Value.Unit)

	feature, err := e.resolveFeature(ctx, m, row)
	if err != nil {
		return nil, err
	}

	constellation := &om.ObservationConstellation{
		Procedure:          procedure,
		ObservableProperty: property,
		Offerings:          row.Offerings,
		FeatureOfInterest:  feature,
		ObservationType:    row.ObservationType,
	}
	if memoized, ok := m.constellations[constellation.Key()]; ok {
		constellation = memoized
	} else {
		template, err := e.resolveTemplate(ctx, m, row)
		if err != nil {
			return nil, err
		}
		constellation.ResultTemplate = template
		m.constellations[constellation.Key()] = constellation
	}

	obs := &om.Observation{
		ObservationID:    row.ObservationID,
		Constellation:    constellation,
		NoDataValue:      e.Settings.NoDataValue,
		TokenSeparator:   e.Settings.TokenSeparator,
		TupleSeparator:   e.Settings.TupleSeparator,
		DecimalSeparator: e.Settings.DecimalSeparator,
	}
	if obs.ObservationID == "" {
		obs.ObservationID = uuid.NewString()
	}
	if row.Identifier != "" && !e.isGeneratedIdentifier(row.Identifier) {
		obs.Identifier = gml.NewCodeWithAuthority(row.CodeSpace, row.Identifier)
	}
	if row.ResultTime != nil {
		instant := gml.NewInstant(*row.ResultTime)
		obs.ResultTime = &instant
	}
	if row.ValidStart != nil && row.ValidEnd != nil {
		period := gml.NewPeriod(*row.ValidStart, *row.ValidEnd)
		obs.ValidTime = &period
	}

	value := &om.SingleObservationValue{
		Time:  row.PhenomenonTime(),
		Value: row.Value,
	}
	if e.Settings.SupportsQuality {
		value.Qualities = row.Qualities
	}
	obs.Value = value
	return obs, nil
}

func (e *Engine) isGeneratedIdentifier(identifier string) bool {
	prefix := e.Settings.GeneratedIdentifierPrefix
	return prefix != "" && len(identifier) >= len(prefix) && identifier[:len(prefix)] == prefix
}

func (e *Engine) resolveFeature(ctx context.Context, m *memo, row *Row) (*om.FeatureOfInterest, error) {
	if feature, ok := m.features[row.FeatureID]; ok {
		return feature, nil
	}
	var feature *om.FeatureOfInterest
	if e.Features != nil {
		resolved, err := e.Features.Feature(ctx, row.FeatureID)
		if err != nil {
			return nil, errors.Wrap(err, "reconcile", "resolveFeature", "feature lookup")
		}
		feature = resolved
	}
	if feature == nil {
		feature = &om.FeatureOfInterest{
			Identifier: gml.NewCodeWithAuthority(row.FeatureCodeSpace, row.FeatureID),
			Name:       row.FeatureName,
		}
	}
	m.features[row.FeatureID] = feature
	return feature, nil
}

// resolveTemplate attaches stored result templates to array-typed
// constellations only; other observation types keep the service defaults.
func (e *Engine) resolveTemplate(ctx context.Context, m *memo, row *Row) (*swe.ResultTemplate, error) {
	if e.Templates == nil || row.ObservationType != om.ObsTypeSWEArrayObservation {
		return nil, nil
	}
	for _, offering := range row.Offerings {
		key := row.ProcedureID + "|" + offering
		template, ok := m.templates[key]
		if !ok {
			resolved, err := e.Templates.Template(ctx, row.ProcedureID, offering)
			if err != nil {
				return nil, errors.Wrap(err, "reconcile", "resolveTemplate", "result template lookup")
			}
			template = resolved
			m.templates[key] = template
		}
		if template != nil {
			return template, nil
		}
	}
	return nil, nil
}

// foldIntoSeries appends a row's value to an observation of the same stored
// series. A single-valued observation is converted to its array form first;
// from then on every fold appends one block shaped by the array's actual
// element type, so template-driven structures keep their field count.
func (e *Engine) foldIntoSeries(obs *om.Observation, row *Row) error {
	codec := swecodec.Codec{TimeFormat: e.Settings.ResponseTimeFormat}
	multi, ok := obs.Value.(*om.MultiObservationValue)
	if !ok {
		array, err := codec.BuildDataArray(obs)
		if err != nil {
			return err
		}
		multi = &om.MultiObservationValue{Time: obs.PhenomenonTime(), Array: array}
		obs.Value = multi
		obs.ResultTime = nil
	}
	block, err := codec.BuildBlock(multi.Array.ElementType, row.PhenomenonTime(),
		row.PropertyID, row.Value, e.Settings.NoDataValue)
	if err != nil {
		return err
	}
	return multi.Array.AppendBlock(block)
}

// MergeForGenericObservation folds observations sharing a constellation,
// ignoring the observable property, into generic observations. The first
// observation of each group becomes the carrier; later ones are absorbed in
// input order. Measurement, category and geometry observations never merge
// and pass through unchanged.
func (e *Engine) MergeForGenericObservation(observations []*om.Observation) []*om.Observation {
	merged := make([]*om.Observation, 0, len(observations))
	for _, obs := range observations {
		target, ok := findMergeTarget(merged, obs)
		if !ok {
			merged = append(merged, obs)
			continue
		}
		target.MergeWith(obs)
		e.Metrics.ObservationsMerged.Inc()
	}
	return merged
}

// findMergeTarget returns the first observation the candidate can merge into.
func findMergeTarget(observations []*om.Observation, candidate *om.Observation) (*om.Observation, bool) {
	for _, obs := range observations {
		if obs.Constellation.EqualExcludingObservableProperty(candidate.Constellation) {
			return obs, true
		}
	}
	return nil, false
}

// Unfold splits an array-valued observation into one single observation per
// (block, value field) pair for persistence. Single-valued observations pass
// through as a one-element slice. The element type must declare exactly one
// time field; value
// tokens are parsed against the declared field type, and a token that does
// not parse fails the whole unfold.
func (e *Engine) Unfold(observation *om.Observation) ([]*om.Observation, error) {
	multi, ok := observation.Value.(*om.MultiObservationValue)
	if !ok {
		return []*om.Observation{observation}, nil
	}
	array := multi.Array
	if array == nil || array.ElementType == nil {
		return nil, errors.NewNoApplicableCode(nil, "array observation %s has no element type", observation.ObservationID)
	}
	timeIndex := -1
	for i, field := range array.ElementType.Fields {
		if !field.Type.IsTime() {
			continue
		}
		if timeIndex >= 0 {
			return nil, errors.NewNoApplicableCode(nil,
				"array observation %s declares more than one time field", observation.ObservationID)
		}
		timeIndex = i
	}
	if timeIndex < 0 {
		return nil, errors.NewNoApplicableCode(nil, "array observation %s has no time field", observation.ObservationID)
	}

	unfolded := make([]*om.Observation, 0, array.Len())
	for _, block := range array.Blocks() {
		phenTime, err := gml.ParseTime(block[timeIndex])
		if err != nil {
			return nil, errors.NewNoApplicableCode(err, "cannot parse phenomenon time token \"%s\"", block[timeIndex])
		}
		for i, field := range array.ElementType.Fields {
			if i == timeIndex {
				continue
			}
			value, err := swecodec.ParseFieldToken(field, block[i])
			if err != nil {
				return nil, err
			}
			obs, err := e.singleFromField(observation, field, phenTime, value)
			if err != nil {
				return nil, err
			}
			unfolded = append(unfolded, obs)
			e.Metrics.ObservationsUnfolded.Inc()
		}
	}
	return unfolded, nil
}

func (e *Engine) singleFromField(parent *om.Observation, field swe.Field, t gml.Time, value om.Value) (*om.Observation, error) {
	obsType, err := observationTypeForField(field.Type)
	if err != nil {
		return nil, err
	}
	property := om.NewObservableProperty(field.Definition, "")
	property.Unit = field.Uom
	constellation := &om.ObservationConstellation{
		Procedure:          parent.Constellation.Procedure,
		ObservableProperty: property,
		Offerings:          parent.Constellation.Offerings,
		FeatureOfInterest:  parent.Constellation.FeatureOfInterest,
		ObservationType:    obsType,
	}
	return &om.Observation{
		ObservationID:    uuid.NewString(),
		Constellation:    constellation,
		ResultTime:       parent.ResultTime,
		ValidTime:        parent.ValidTime,
		Value:            &om.SingleObservationValue{Time: t, Value: value},
		NoDataValue:      parent.NoDataValue,
		TokenSeparator:   parent.TokenSeparator,
		TupleSeparator:   parent.TupleSeparator,
		DecimalSeparator: parent.DecimalSeparator,
	}, nil
}

func observationTypeForField(t swe.FieldType) (string, error) {
	switch t {
	case swe.FieldQuantity:
		return om.ObsTypeMeasurement, nil
	case swe.FieldBoolean:
		return om.ObsTypeTruthObservation, nil
	case swe.FieldCount:
		return om.ObsTypeCountObservation, nil
	case swe.FieldCategory:
		return om.ObsTypeCategoryObservation, nil
	case swe.FieldText:
		return om.ObsTypeTextObservation, nil
	default:
		return "", errors.NewNoApplicableCode(nil, "sweField type \"%s\" cannot be unfolded", t)
	}
}
