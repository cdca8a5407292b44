package domain

import (
	"fmt"
	"strings"
)

// FailureKind classifies why a record failed.
type FailureKind int

// Failure kinds.
const (
	// ValidationFailure means mandatory fields are missing or empty.
	// Nothing was sent to the marketplace.
	ValidationFailure FailureKind = iota + 1
	// RemoteRequestFailure means a transport or HTTP error.
	RemoteRequestFailure
	// BusinessRuleFailure means category, attribute, price or shipping rules
	// were violated. Every violated rule is listed.
	BusinessRuleFailure
	// AbortedStepFailure means a named saga step aborted.
	AbortedStepFailure
	// UnexpectedFailure is anything else.
	UnexpectedFailure
)

// Code returns the outcome code recorded for the kind.
func (k FailureKind) Code() OutcomeCode {
	switch k {
	case ValidationFailure:
		return CodeValidationFailure
	case RemoteRequestFailure:
		return CodeRemoteFailure
	case BusinessRuleFailure:
		return CodeBusinessRuleFailure
	case AbortedStepFailure:
		return CodeAbortedStep
	default:
		return CodeUnexpectedFailure
	}
}

// String returns the kind name.
func (k FailureKind) String() string {
	switch k {
	case ValidationFailure:
		return "validation"
	case RemoteRequestFailure:
		return "remote_request"
	case BusinessRuleFailure:
		return "business_rule"
	case AbortedStepFailure:
		return "aborted_step"
	default:
		return "unexpected"
	}
}

// Failure is a classified record failure. It is the only error type the
// operation drivers hand to the outcome recorder.
type Failure struct {
	// Kind classifies the failure.
	Kind FailureKind
	// Step is the saga step that aborted, for AbortedStepFailure.
	Step string
	// Causes are the operator-facing messages. They only accumulate.
	Causes []string
	// Err is the underlying error, if any.
	Err error
}

// NewFailure creates a failure with the given causes.
func NewFailure(kind FailureKind, causes ...string) *Failure {
	return &Failure{Kind: kind, Causes: causes}
}

// WrapFailure creates a failure around an underlying error.
// The error text becomes the first cause.
func WrapFailure(kind FailureKind, err error) *Failure {
	f := &Failure{Kind: kind, Err: err}
	if err != nil {
		f.Causes = []string{err.Error()}
	}
	return f
}

// Error implements error.
func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(f.Kind.String())
	if f.Step != "" {
		fmt.Fprintf(&b, " [%s]", f.Step)
	}
	if len(f.Causes) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(f.Causes, "; "))
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Code returns the outcome code for the failure.
func (f *Failure) Code() OutcomeCode {
	return f.Kind.Code()
}

// WithCause returns a copy of the failure with an extra cause appended.
func (f *Failure) WithCause(cause string) *Failure {
	cp := *f
	cp.Causes = append(append([]string(nil), f.Causes...), cause)
	return &cp
}

// RecordedCauses returns the causes as written to the queue. Aborted steps
// are prefixed with the step name.
func (f *Failure) RecordedCauses() []string {
	if f.Step == "" {
		return append([]string(nil), f.Causes...)
	}
	out := make([]string, 0, len(f.Causes)+1)
	out = append(out, "Etapa: "+f.Step)
	out = append(out, f.Causes...)
	return out
}

// RemoteError describes a failed marketplace request.
type RemoteError struct {
	// Message is a short description.
	Message string
	// Code is the API error_code, else the HTTP status. 1000 marks network
	// errors and 9999 unexpected ones.
	Code int
	// HTTPStatus is the response status, 0 when no response was received.
	HTTPStatus int
	// Context names the call that failed (e.g. "item_publication").
	Context string
	// Details is the raw response body.
	Details string
}

// Network and unexpected error codes.
const (
	RemoteCodeNetwork    = 1000
	RemoteCodeUnexpected = 9999
)

// Error implements error.
func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s (code %d", e.Context, e.Message, e.Code)
	if e.HTTPStatus != 0 {
		msg += fmt.Sprintf(", http %d", e.HTTPStatus)
	}
	msg += ")"
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}
