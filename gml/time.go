package gml

import (
	"fmt"
	"strings"
	"time"

	"github.com/geomatico/52n-sos-4.0-sub001/errors"
)

// ISOFormat is the default wire format for time values.
const ISOFormat = time.RFC3339

// Time is a phenomenon/result time: either an Instant or a Period.
// The union is closed; no other implementations exist.
type Time interface {
	// Reference returns the representative timestamp used for ordering:
	// the instant itself, or the start of a period.
	Reference() time.Time

	isTime()
}

// Instant is a single point in time.
type Instant struct {
	Value time.Time
}

// NewInstant creates an Instant.
func NewInstant(t time.Time) Instant {
	return Instant{Value: t}
}

// Reference returns the instant itself.
func (i Instant) Reference() time.Time { return i.Value }

func (Instant) isTime() {}

// Period is a time span bounded by two instants.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod creates a Period.
func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}

// Reference returns the start of the period.
func (p Period) Reference() time.Time { return p.Start }

func (Period) isTime() {}

// dateOptionalTime layouts tried in order, longest first. Offset variants are
// derived by appending the zone designator.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
}

// hasOffsetMarker reports whether an ISO time string carries an explicit
// offset designator: a trailing Z (either case), a '+', or a '-' inside the
// time-of-day part.
func hasOffsetMarker(s string) bool {
	if strings.ContainsAny(s, "Zz+") {
		return true
	}
	if t := strings.IndexByte(s, 'T'); t >= 0 {
		return strings.ContainsRune(s[t:], '-')
	}
	return false
}

// ParseISO parses an ISO-8601 date or date-time string. Strings carrying an
// offset designator are parsed with that offset; strings without one are
// interpreted as UTC.
func ParseISO(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.Wrap(errors.ErrParsingFailed, "gml", "ParseISO", "empty time string")
	}
	normalized := s
	if strings.HasSuffix(normalized, "z") {
		normalized = normalized[:len(normalized)-1] + "Z"
	}
	if hasOffsetMarker(normalized) {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout+"Z07:00", normalized); err == nil {
				return t, nil
			}
			if t, err := time.Parse(layout+"-0700", normalized); err == nil {
				return t, nil
			}
		}
	} else {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("gml.ParseISO: cannot parse '%s' as ISO-8601 time: %w", s, errors.ErrParsingFailed)
}

// ParseTime parses a time token into an Instant, or a Period when the token
// uses the slash-separated "start/end" form.
func ParseTime(token string) (Time, error) {
	if start, end, found := strings.Cut(token, "/"); found {
		s, err := ParseISO(start)
		if err != nil {
			return nil, err
		}
		e, err := ParseISO(end)
		if err != nil {
			return nil, err
		}
		return NewPeriod(s, e), nil
	}
	t, err := ParseISO(token)
	if err != nil {
		return nil, err
	}
	return NewInstant(t), nil
}

// FormatISO formats a timestamp using the default ISO wire format.
func FormatISO(t time.Time) string {
	return t.Format(ISOFormat)
}

// Format formats a timestamp with the given layout. An empty layout falls
// back to the default ISO format. A trailing Z produced by a custom layout is
// replaced with the explicit +00:00 offset, matching the response format the
// service has always emitted.
func Format(t time.Time, layout string) string {
	if layout == "" {
		return FormatISO(t)
	}
	s := t.Format(layout)
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	return s
}

// FormatTime formats an Instant or Period for the wire. Periods use the
// slash-separated "start/end" form.
func FormatTime(t Time, layout string) string {
	switch v := t.(type) {
	case Instant:
		return Format(v.Value, layout)
	case Period:
		return Format(v.Start, layout) + "/" + Format(v.End, layout)
	default:
		return ""
	}
}

// EndOfRequestedPeriod extends a timestamp parsed from a truncated ISO string
// to the last instant of the period the string implies. The length of the
// original string selects the precision: 4 a year, 7 a month, 10 a day, 13 an
// hour, 16 a minute, 19 a second. Other lengths leave the timestamp unchanged.
func EndOfRequestedPeriod(t time.Time, isoLength int) time.Time {
	switch isoLength {
	case 4:
		return t.AddDate(1, 0, 0).Add(-time.Millisecond)
	case 7:
		return t.AddDate(0, 1, 0).Add(-time.Millisecond)
	case 10:
		return t.AddDate(0, 0, 1).Add(-time.Millisecond)
	case 13:
		return t.Add(time.Hour - time.Millisecond)
	case 16:
		return t.Add(time.Minute - time.Millisecond)
	case 19:
		return t.Add(time.Second - time.Millisecond)
	default:
		return t
	}
}

// TimeEqual reports whether two Time values describe the same instant or span.
func TimeEqual(a, b Time) bool {
	switch av := a.(type) {
	case Instant:
		bv, ok := b.(Instant)
		return ok && av.Value.Equal(bv.Value)
	case Period:
		bv, ok := b.(Period)
		return ok && av.Start.Equal(bv.Start) && av.End.Equal(bv.End)
	default:
		return false
	}
}
