// Package perr defines the error taxonomy from spec.md §7: validation
// failures, transient platform failures, decode failures and not-found
// results. Each kind carries a distinct propagation policy; call sites
// type-assert (via errors.As) rather than string-matching messages. Fatal
// startup conditions have no type here: the cmd binaries log them with
// Fatal and exit.
package perr

import "fmt"

// ValidationError marks a rejected transaction: malformed payload,
// authorization failure, or invariant violation. Non-retried; surfaced to
// the submitter as-is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TransientPlatformError marks a failure expected to clear on retry: a
// submit/status/subscribe RPC failure, a dropped stream, an unreachable
// database. The ledger-sync subscriber retries dropped subscriptions after a
// fixed wait; the batcher and the read store return it to their caller, and
// the façade maps it to HTTP 503.
type TransientPlatformError struct {
	Op  string
	Err error
}

func (e *TransientPlatformError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransientPlatformError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientPlatformError tagged with the
// operation that failed.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientPlatformError{Op: op, Err: err}
}

// DecodeError marks container bytes that failed to parse. Per spec.md §9's
// resolution of the open question, this is never fatal to block
// processing: the offending change is logged and skipped.
type DecodeError struct {
	Address string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Address, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// Decode wraps err as a DecodeError for the given address.
func Decode(address string, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Address: address, Err: err}
}

// NotFoundError marks a read-path lookup that found nothing; HTTP callers
// map this to a 404-class response.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found", e.Resource) }

// NotFound builds a NotFoundError for the named resource.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}
