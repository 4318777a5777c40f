package valuecodec

import "fmt"

// Error kind codes. These become the Failure frame's `code` field verbatim,
// so they are stable identifiers, not free-form prose.
const (
	ErrKindMalformed       = "Malformed"
	ErrKindTypeMismatch    = "TypeMismatch"
	ErrKindUnsupportedKind = "UnsupportedKind"
)

// DecodeError is returned by Codec.Decode when the supplied bytes cannot be
// decoded as the requested Kind. Kind (the error code, not a valuecodec.Kind)
// is surfaced as a Failure frame's code field unchanged.
type DecodeError struct {
	Kind    string
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newDecodeError(kind, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FailureError lets a registered computation report a specific Failure
// frame code rather than falling back to the generic "UserError" code the
// dispatcher assigns to an ordinary error return. The dispatcher walks an
// invoker's returned error down to its innermost cause (via errors.Unwrap)
// looking for one of these before giving up and using err.Error() verbatim.
type FailureError struct {
	Code    string
	Message string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
