package errors

import "fmt"

// NoDecoderForKeyError indicates no decoder is registered for a lookup key.
// A missing codec is a deployment defect, never retried.
type NoDecoderForKeyError struct {
	Key fmt.Stringer
}

// Error implements the error interface.
func (e *NoDecoderForKeyError) Error() string {
	return fmt.Sprintf("No decoder implementation is available for key '%s'!", e.Key)
}

// Coded maps the lookup miss onto the OWS exception vocabulary.
func (e *NoDecoderForKeyError) Coded() *CodedException {
	return &CodedException{Code: CodeNoApplicableCode, Message: e.Error(), Err: e}
}

// NoEncoderForKeyError indicates no encoder is registered for a lookup key.
type NoEncoderForKeyError struct {
	Key fmt.Stringer
}

// Error implements the error interface.
func (e *NoEncoderForKeyError) Error() string {
	return fmt.Sprintf("No encoder implementation is available for key '%s'!", e.Key)
}

// Coded maps the lookup miss onto the OWS exception vocabulary.
func (e *NoEncoderForKeyError) Coded() *CodedException {
	return &CodedException{Code: CodeNoApplicableCode, Message: e.Error(), Err: e}
}

// XMLDecodingError wraps a parser failure together with the offending
// document text. Raw parser errors never cross the dispatch boundary.
type XMLDecodingError struct {
	XML string
	Err error
}

// Error implements the error interface.
func (e *XMLDecodingError) Error() string {
	return fmt.Sprintf("error decoding XML document: %v", e.Err)
}

// Unwrap returns the parser error.
func (e *XMLDecodingError) Unwrap() error {
	return e.Err
}

// Coded maps the decoding failure onto the OWS exception vocabulary.
func (e *XMLDecodingError) Coded() *CodedException {
	return &CodedException{Code: CodeNoApplicableCode, Message: e.Error(), Err: e}
}
