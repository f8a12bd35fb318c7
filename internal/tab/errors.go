package tab

import "fmt"

// SchemaError reports a required field or column that is missing, or input
// whose shape does not match the expected feed structure. It is fatal to the
// component invocation that detects it.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string { return "schema: " + e.Msg }

func Schemaf(format string, args ...any) *SchemaError {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

// EmptyInputError reports an input collection that must be non-empty.
type EmptyInputError struct {
	Name string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s has no rows", e.Name)
}

// NoMatchError reports a filter that must return at least one row returning
// none. It is distinct from EmptyInputError: there was data, nothing matched.
type NoMatchError struct {
	Msg string
}

func (e *NoMatchError) Error() string { return "no match: " + e.Msg }

// ValueError reports a single cell that cannot be coerced to the type a
// stage needs. Stages isolate the record and continue the batch.
type ValueError struct {
	Column string
	Value  any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("value: column %q: %v is not numeric", e.Column, e.Value)
}
