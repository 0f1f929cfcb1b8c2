package flows

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrBusy is returned when a submit arrives while the stage's request is in flight
	ErrBusy = errors.New("a request is already in progress")
	// ErrFlowClosed is returned when the flow is not open, or was closed while the
	// request was in flight and its response was discarded
	ErrFlowClosed = errors.New("flow is closed")
	// ErrInvalidTransition is returned for an event the current stage does not accept
	ErrInvalidTransition = errors.New("invalid transition")
)

// ValidationError holds per-field messages from client-side validation
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
