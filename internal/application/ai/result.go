package ai

// Kind is the outcome of a model-backed operation.
type Kind int

const (
	// KindOk means the model answer was parsed and used.
	KindOk Kind = iota
	// KindFallback means a deterministic baseline replaced the answer.
	KindFallback
	// KindFatal means no usable value exists.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindFallback:
		return "fallback"
	default:
		return "fatal"
	}
}

// Result makes the three-way outcome explicit at the call site.
type Result[T any] struct {
	Kind     Kind
	Value    T
	Err      error
	Warnings []string
}

// Ok wraps a value parsed from the model.
func Ok[T any](v T, warnings ...string) Result[T] {
	return Result[T]{Kind: KindOk, Value: v, Warnings: warnings}
}

// Fallback wraps a baseline value together with the reason it was needed.
func Fallback[T any](v T, cause error, warnings ...string) Result[T] {
	return Result[T]{Kind: KindFallback, Value: v, Err: cause, Warnings: warnings}
}

// Fatal carries an error and no value.
func Fatal[T any](err error) Result[T] {
	return Result[T]{Kind: KindFatal, Err: err}
}
