// Package errs defines the tagged failure kinds surfaced by a render.
package errs

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound indicates the template source has no bytes for a variant.
var ErrTemplateNotFound = errors.New("template not found")

// ErrTemplateMalformed indicates the workbook or one of its XML parts failed to parse.
var ErrTemplateMalformed = errors.New("template malformed")

// ErrSheetNotFound indicates an expected sheet is absent from the template.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrSerializationFailure indicates the workbook or archive could not be written.
var ErrSerializationFailure = errors.New("serialization failure")

// ErrInvalidInput indicates required request fields are missing or malformed.
var ErrInvalidInput = errors.New("invalid input")

var kinds = []struct {
	err  error
	name string
}{
	{ErrTemplateNotFound, "TemplateNotFound"},
	{ErrTemplateMalformed, "TemplateMalformed"},
	{ErrSheetNotFound, "SheetNotFound"},
	{ErrSerializationFailure, "SerializationFailure"},
	{ErrInvalidInput, "InvalidInput"},
}

// Error is a failure tagged with one of the sentinel kinds.
type Error struct {
	Kind error
	Op   string // e.g. "workbook.load", "repair.sharedStrings"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New creates a new Error.
func New(kind error, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// Errorf creates a new Error whose cause is built from a format string.
func Errorf(kind error, op, format string, args ...interface{}) *Error {
	return New(kind, op, fmt.Errorf(format, args...))
}

// KindOf returns the name of the kind carried by err, or "" when err is
// untagged.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
