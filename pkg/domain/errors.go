package domain

import (
	"errors"
	"fmt"
)

// ErrPageNotFound is returned when a slug is not present in the mesh or on the remote site.
var ErrPageNotFound = errors.New("page not found")

// ErrBuildInProgress is returned when a build is triggered while another one holds the build lock.
var ErrBuildInProgress = errors.New("build already in progress")

// ErrNoReport is returned when no build has produced a report yet.
var ErrNoReport = errors.New("no build report available")

// ErrNoDiagram is returned when a page has no graphviz item to compile.
var ErrNoDiagram = errors.New("page has no graphviz item")

// ErrToolExit marks an external tool that started but exited with a non-zero status.
var ErrToolExit = errors.New("tool exited with non-zero status")

// DirectiveError reports a diagram directive the evaluator cannot carry out.
// It aborts the diagram of the page being compiled, never the whole build.
type DirectiveError struct {
	Directive string
	Reason    string
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s\n%s", e.Reason, e.Directive)
}

// NewDirectiveError builds a DirectiveError.
func NewDirectiveError(reason, directive string) *DirectiveError {
	return &DirectiveError{Directive: directive, Reason: reason}
}

// IsDirectiveError reports whether err carries a DirectiveError.
func IsDirectiveError(err error) bool {
	var de *DirectiveError
	return errors.As(err, &de)
}
