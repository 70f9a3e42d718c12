package foundation

import (
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// Validator checks one aspect of a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult collects the failures of one or more validators. The
// zero value is not valid; use Valid.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError is a single failure. Field is a dotted path such as
// "server.addr".
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	if fe.Field == "" {
		return fe.Message
	}
	return fe.Field + ": " + fe.Message
}

// Valid returns a passing result.
func Valid() ValidationResult { return ValidationResult{Valid: true} }

// Invalid returns a failing result.
func Invalid(errs ...FieldError) ValidationResult { return ValidationResult{Errors: errs} }

// NewValidationError builds a FieldError.
func NewValidationError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// Combine returns a result holding the failures of both.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return vr
	}
	return Invalid(append(append([]FieldError(nil), vr.Errors...), other.Errors...)...)
}

// ToError returns nil for a passing result and a validation error listing
// every failure otherwise. The failing fields are attached as context.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}
	msgs := make([]string, len(vr.Errors))
	fields := make([]string, 0, len(vr.Errors))
	for i, fe := range vr.Errors {
		msgs[i] = fe.Error()
		if fe.Field != "" {
			fields = append(fields, fe.Field)
		}
	}
	return errors.ValidationError(strings.Join(msgs, "; ")).
		WithContext("fields", fields).
		Build()
}

// ValidatorChain runs validators in order and combines their results.
type ValidatorChain[T any] []Validator[T]

// NewValidatorChain returns a chain of validators.
func NewValidatorChain[T any](validators ...Validator[T]) ValidatorChain[T] {
	return ValidatorChain[T](validators)
}

// Validate runs every validator; it does not stop at the first failure.
func (vc ValidatorChain[T]) Validate(value T) ValidationResult {
	res := Valid()
	for _, v := range vc {
		res = res.Combine(v(value))
	}
	return res
}
