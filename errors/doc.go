// Package errors provides the OWS exception model and standardized error
// handling patterns for the service. It includes the fixed OWS exception-code
// enumeration, coded exceptions carrying locator and message, composite
// exception reports, typed errors for codec lookup misses and malformed
// payloads, and helper functions for consistent error wrapping.
package errors
