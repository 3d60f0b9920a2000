// Package apperr defines the error taxonomy shared by every stage of a
// conversion run.
//
// A run is fail-fast: the first error aborts the whole conversion. The kind
// attached to an error tells the caller which stage failed (configuration,
// rendering, recognition, encoding, filesystem) without parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure by the stage that produced it.
type Kind string

const (
	// KindConfiguration marks invalid user input such as a non-positive ratio.
	KindConfiguration Kind = "configuration"
	// KindResourceInit marks failures to open the document or set up engines.
	KindResourceInit Kind = "resource_init"
	// KindRender marks page fetch or draw failures.
	KindRender Kind = "render"
	// KindOCR marks recognition engine invocation failures.
	KindOCR Kind = "ocr"
	// KindEncoding marks PNG or JSON encoding failures.
	KindEncoding Kind = "encoding"
	// KindFileSystem marks directory creation and write failures.
	KindFileSystem Kind = "filesystem"
	// KindFileExists marks a refused overwrite of an existing artifact.
	KindFileExists Kind = "file_exists"
)

// Error is a categorized error. Page is the 1-based page index the error
// relates to, or 0 when it is not page specific.
type Error struct {
	Kind Kind
	Op   string
	Page int
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind) + " error"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind with no cause.
// This lets callers write errors.Is(err, apperr.ErrFileExists).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Op == "" && t.Page == 0 && t.Kind == e.Kind
}

// Sentinels usable with errors.Is.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrResourceInit  = &Error{Kind: KindResourceInit}
	ErrRender        = &Error{Kind: KindRender}
	ErrOCR           = &Error{Kind: KindOCR}
	ErrEncoding      = &Error{Kind: KindEncoding}
	ErrFileSystem    = &Error{Kind: KindFileSystem}
	ErrFileExists    = &Error{Kind: KindFileExists}
)

// New creates a categorized error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithPage returns a copy of e bound to the given page.
func (e *Error) WithPage(page int) *Error {
	c := *e
	c.Page = page
	return &c
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Configuration wraps err as a configuration error.
func Configuration(op string, err error) *Error { return New(KindConfiguration, op, err) }

// ResourceInit wraps err as a resource initialization error.
func ResourceInit(op string, err error) *Error { return New(KindResourceInit, op, err) }

// Render wraps err as a render error.
func Render(op string, err error) *Error { return New(KindRender, op, err) }

// OCR wraps err as a recognition error.
func OCR(op string, err error) *Error { return New(KindOCR, op, err) }

// Encoding wraps err as an encoding error.
func Encoding(op string, err error) *Error { return New(KindEncoding, op, err) }

// FileSystem wraps err as a filesystem error.
func FileSystem(op string, err error) *Error { return New(KindFileSystem, op, err) }

// FileExists wraps err as a refused-overwrite error.
func FileExists(op string, err error) *Error { return New(KindFileExists, op, err) }

// AtPage binds err to page when err is an *Error that has no page yet.
// Other errors are returned unchanged.
func AtPage(err error, page int) error {
	e, ok := err.(*Error) //nolint:errorlint // only the outermost error is rebound
	if !ok || e.Page != 0 {
		return err
	}
	return e.WithPage(page)
}
