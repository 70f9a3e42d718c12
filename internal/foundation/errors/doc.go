// Package errors provides the classified error primitives used across draftmd.
//
// A ClassifiedError carries a category, a severity, a retry strategy and
// structured context. Errors are built with a fluent builder:
//
//	err := errors.NewError(errors.CategoryStorage, "save document failed").
//		WithContext("document_id", id).
//		WithCause(dbErr).
//		Retryable().
//		Build()
//
// The CLI and HTTP adapters translate categories into exit codes and status
// codes and log with a level derived from the severity.
package errors
