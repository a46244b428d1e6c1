package domain

// Catalog of business failure messages. Expected outcomes are always reported
// through a Result carrying one of these, never as a raised error.
const (
	MsgForbidden      = "Forbidden"
	MsgNotFound       = "NotFound"
	MsgDeletionFailed = "DeletionFailed"
)

// Result is the uniform service envelope: success or an ordered list of
// business failure messages.
type Result struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
}

// TypedResult is a Result carrying a payload on success.
type TypedResult[T any] struct {
	Result
	Payload T `json:"payload,omitempty"`
}

// OK builds a success envelope.
func OK() Result {
	return Result{Success: true}
}

// Fail builds a failure envelope from one or more catalog messages.
func Fail(errs ...string) Result {
	return Result{Success: false, Errors: errs}
}

// OKWith builds a success envelope carrying a payload.
func OKWith[T any](payload T) TypedResult[T] {
	return TypedResult[T]{Result: OK(), Payload: payload}
}

// FailWith builds a typed failure envelope with a zero payload.
func FailWith[T any](errs ...string) TypedResult[T] {
	return TypedResult[T]{Result: Fail(errs...)}
}
