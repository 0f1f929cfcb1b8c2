package flows

import "fmt"

// Event drives a stage transition
type Event string

const (
	EventSubmitSucceeded Event = "submitSucceeded"
	EventSubmitFailed    Event = "submitFailed"
	EventDismissed       Event = "dismissed"
	EventCompleted       Event = "completed"
)

// transitions maps (stage, event) to the next stage. Pairs that are not listed are
// rejected.
type transitions[S comparable] map[S]map[Event]S

func (t transitions[S]) next(from S, ev Event) (S, error) {
	if to, ok := t[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %v on %v", ErrInvalidTransition, ev, from)
}
