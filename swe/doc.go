// Package swe provides the SWE Common data model for block-encoded
// observation results: data records with a closed field-type enumeration,
// text encodings with configurable separators, and the data array holding the
// token matrix. The model is purely textual; typed value conversion lives in
// the swecodec package.
package swe
