package fault

import "fmt"

// Kinds form a closed taxonomy. The response builder maps an error to the
// wire-level error_type through these tags, never through reflection on the
// dynamic type.
const (
	KindValidation   = "ValidationError"
	KindTransfer     = "TransferError"
	KindProcessing   = "ProcessingError"
	KindNotification = "NotificationError"
)

// Error is a classified failure. Kind is one of the Kind* constants or, for
// processing failures, a stub-supplied classification.
type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a terminal request-validation error. Never retried.
func Validation(format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// Transfer wraps a storage download/upload failure. Terminal, never retried.
func Transfer(op string, err error) *Error {
	return &Error{
		Kind:    KindTransfer,
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}

// Processing wraps a failure raised by the processing stub. The stub may have
// classified the error itself; Classify preserves that.
func Processing(err error) *Error {
	return Classify(KindProcessing, err)
}

// Classify wraps err under the given kind, keeping an existing classification
// when err already carries one.
func Classify(kind string, err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	}
}

// KindOf reports the classification of err, defaulting unclassified errors to
// ProcessingError.
func KindOf(err error) string {
	if e, ok := err.(*Error); ok && e.Kind != "" {
		return e.Kind
	}
	return KindProcessing
}
