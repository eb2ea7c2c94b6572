package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is an OWS exception code from the fixed enumeration defined by the
// OGC Web Services Common specification, extended with the SOAP fault
// variants the bindings use.
type Code string

const (
	// CodeMissingParameterValue indicates a required request parameter is absent.
	CodeMissingParameterValue Code = "MissingParameterValue"
	// CodeInvalidParameterValue indicates a request parameter carries an illegal value.
	CodeInvalidParameterValue Code = "InvalidParameterValue"
	// CodeNoApplicableCode is the catch-all code for failures without a more specific one.
	CodeNoApplicableCode Code = "NoApplicableCode"
	// CodeOperationNotSupported indicates the requested operation is not implemented.
	CodeOperationNotSupported Code = "OperationNotSupported"
	// CodeVersionNegotiationFailed indicates no acceptable service version could be agreed on.
	CodeVersionNegotiationFailed Code = "VersionNegotiationFailed"
	// CodeInvalidUpdateSequence indicates an update sequence value is out of range.
	CodeInvalidUpdateSequence Code = "InvalidUpdateSequence"
	// CodeInvalidRequest indicates the request is structurally broken.
	CodeInvalidRequest Code = "InvalidRequest"
	// CodeResponseExceedsSizeLimit indicates the response would exceed a resource limit.
	CodeResponseExceedsSizeLimit Code = "ResponseExceedsSizeLimit"

	// CodeSoapSender maps client-caused failures onto the SOAP fault vocabulary.
	CodeSoapSender Code = "Sender"
	// CodeSoapReceiver maps server-caused failures onto the SOAP fault vocabulary.
	CodeSoapReceiver Code = "Receiver"
)

// String returns the wire representation of the code.
func (c Code) String() string {
	return string(c)
}

// Standard error variables for common conditions
var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")

	// Data errors
	ErrInvalidData   = errors.New("invalid data format")
	ErrParsingFailed = errors.New("parsing failed")

	// Resource errors
	ErrResourceExhausted = errors.New("resource exhausted")
)

// CodedException is a single OWS exception: a code, an optional locator
// naming the offending parameter, and a human-readable message. It wraps the
// underlying cause when one exists.
type CodedException struct {
	Code    Code
	Locator string
	Message string
	Err     error
}

// Error implements the error interface.
func (ce *CodedException) Error() string {
	var b strings.Builder
	b.WriteString(string(ce.Code))
	if ce.Locator != "" {
		b.WriteString(" (locator: ")
		b.WriteString(ce.Locator)
		b.WriteString(")")
	}
	if ce.Message != "" {
		b.WriteString(": ")
		b.WriteString(ce.Message)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (ce *CodedException) Unwrap() error {
	return ce.Err
}

// Report is a composite OWS exception report. Multiple accumulated exceptions
// may be merged into one report before being surfaced to the client.
type Report struct {
	Version    string
	Exceptions []*CodedException
}

// NewReport creates an empty report for the given service version.
func NewReport(version string) *Report {
	return &Report{Version: version}
}

// Add appends a coded exception to the report.
func (r *Report) Add(ce *CodedException) *Report {
	r.Exceptions = append(r.Exceptions, ce)
	return r
}

// Merge appends all exceptions of another report. The receiver's version wins
// unless it is unset.
func (r *Report) Merge(other *Report) *Report {
	if other == nil {
		return r
	}
	if r.Version == "" {
		r.Version = other.Version
	}
	r.Exceptions = append(r.Exceptions, other.Exceptions...)
	return r
}

// HasExceptions reports whether the report carries at least one exception.
func (r *Report) HasExceptions() bool {
	return len(r.Exceptions) > 0
}

// Error implements the error interface.
func (r *Report) Error() string {
	if len(r.Exceptions) == 0 {
		return "empty exception report"
	}
	msgs := make([]string, len(r.Exceptions))
	for i, ce := range r.Exceptions {
		msgs[i] = ce.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the contained exceptions to errors.Is/errors.As.
func (r *Report) Unwrap() []error {
	errs := make([]error, len(r.Exceptions))
	for i, ce := range r.Exceptions {
		errs[i] = ce
	}
	return errs
}

// NewMissingParameterValue creates a MissingParameterValue exception for the
// named parameter.
func NewMissingParameterValue(parameter string) *CodedException {
	return &CodedException{
		Code:    CodeMissingParameterValue,
		Locator: parameter,
		Message: fmt.Sprintf("The value for the parameter '%s' is missing in the request!", parameter),
	}
}

// NewInvalidParameterValue creates an InvalidParameterValue exception for the
// named parameter and offending value.
func NewInvalidParameterValue(parameter, value string) *CodedException {
	return &CodedException{
		Code:    CodeInvalidParameterValue,
		Locator: parameter,
		Message: fmt.Sprintf("The value '%s' of the parameter '%s' is invalid", value, parameter),
	}
}

// NewNoApplicableCode creates a NoApplicableCode exception wrapping a cause.
func NewNoApplicableCode(err error, format string, args ...any) *CodedException {
	return &CodedException{
		Code:    CodeNoApplicableCode,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// NewOperationNotSupported creates an OperationNotSupported exception for the
// named operation.
func NewOperationNotSupported(operation string) *CodedException {
	return &CodedException{
		Code:    CodeOperationNotSupported,
		Locator: operation,
		Message: fmt.Sprintf("The requested operation '%s' is not supported by this service!", operation),
	}
}

// NewResponseExceedsSizeLimit creates a ResponseExceedsSizeLimit exception.
// It wraps ErrResourceExhausted so callers can classify it without inspecting
// the code.
func NewResponseExceedsSizeLimit(format string, args ...any) *CodedException {
	return &CodedException{
		Code:    CodeResponseExceedsSizeLimit,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrResourceExhausted,
	}
}

// CollectCoded merges a list of per-item validation failures into one report.
// Nil entries are skipped; plain errors are wrapped as NoApplicableCode. A nil
// result means no failures were collected. This lets the caller report every
// invalid input in one response instead of one-at-a-time round-trips.
func CollectCoded(version string, errs []error) *Report {
	report := NewReport(version)
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ce *CodedException
		if errors.As(err, &ce) {
			report.Add(ce)
			continue
		}
		var r *Report
		if errors.As(err, &r) {
			report.Merge(r)
			continue
		}
		report.Add(NewNoApplicableCode(err, "%s", err.Error()))
	}
	if !report.HasExceptions() {
		return nil
	}
	return report
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
