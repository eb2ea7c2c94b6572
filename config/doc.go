// Package config provides the service settings consumed by the coding and
// reconciliation layers: the array-encoding separators, the no-data
// placeholder, the response time format, and the free-heap guard threshold.
// Settings documents are JSON, validated against an embedded JSON schema
// before use, and exposed through a thread-safe wrapper with atomic updates.
package config
