// Package gml provides the GML time model used throughout the observation
// pipeline: instants, periods, ISO-8601 parsing and formatting, and the
// precision rules for extending truncated date strings to the end of their
// implied period.
package gml
