// Package clipboard copies report text to the system clipboard.
//
// Copying is attempted in two explicit steps. The primary writer is the
// cross-platform clipboard library; when it fails the caller's Present hook
// shows the text for manual selection and the legacy command chain is tried.
// A copy that only succeeds through the legacy chain is a degraded success.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	atotto "github.com/atotto/clipboard"
)

type Status int

const (
	Failed Status = iota
	Copied
	CopiedFallback
)

func (s Status) String() string {
	switch s {
	case Copied:
		return "copied"
	case CopiedFallback:
		return "copied-fallback"
	default:
		return "failed"
	}
}

type Result struct {
	Status Status
	// Err is set when Status is Failed.
	Err error
}

func (r Result) OK() bool { return r.Status != Failed }

// Error reports why both copy attempts failed.
type Error struct {
	Primary  error
	Fallback error
}

func (e *Error) Error() string {
	return fmt.Sprintf("clipboard: copy failed (primary: %v; fallback: %v)", e.Primary, e.Fallback)
}

func (e *Error) Unwrap() []error { return []error{e.Primary, e.Fallback} }

// Writer is a single way of putting text on the clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

type WriterFunc func(ctx context.Context, text string) error

func (f WriterFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

var errNoWriter = errors.New("no clipboard writer")

type Clipboard struct {
	Primary  Writer
	Fallback Writer
	// Present, when set, shows text so the user can select and copy it by hand.
	// It runs before the fallback attempt.
	Present func(text string)
}

// System returns the clipboard backed by the OS.
func System(present func(text string)) *Clipboard {
	return &Clipboard{
		Primary:  WriterFunc(writeLibrary),
		Fallback: WriterFunc(writeCommands),
		Present:  present,
	}
}

func (c *Clipboard) Copy(ctx context.Context, text string) Result {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	primaryErr := errNoWriter
	if c.Primary != nil {
		primaryErr = c.Primary.WriteText(ctx, text)
	}
	if primaryErr == nil {
		return Result{Status: Copied}
	}

	if c.Present != nil {
		c.Present(text)
	}

	fallbackErr := errNoWriter
	if c.Fallback != nil {
		fallbackErr = c.Fallback.WriteText(ctx, text)
	}
	if fallbackErr == nil {
		return Result{Status: CopiedFallback}
	}
	return Result{Status: Failed, Err: &Error{Primary: primaryErr, Fallback: fallbackErr}}
}

func writeLibrary(_ context.Context, text string) error {
	if atotto.Unsupported {
		return errors.New("clipboard unsupported on this system")
	}
	return atotto.WriteAll(text)
}
