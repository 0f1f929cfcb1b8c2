// Package notify carries user-facing success and error messages out of the flows.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// FallbackMessage is shown when an error carries no message of its own
const FallbackMessage = "Something went wrong"

// AutoHide is how long a notification stays visible in interactive surfaces
const AutoHide = 4 * time.Second

// Severity of a notification
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "success"
}

// Notification is one message shown to the user
type Notification struct {
	Severity Severity
	Title    string
	Message  string
	AutoHide time.Duration
}

// New builds a notification with the standard title and auto-hide duration.
// An empty error message is replaced by FallbackMessage.
func New(severity Severity, message string) Notification {
	n := Notification{Severity: severity, Message: message, AutoHide: AutoHide}
	switch severity {
	case SeverityError:
		n.Title = "Error"
		if n.Message == "" {
			n.Message = FallbackMessage
		}
	default:
		n.Title = "Success"
	}
	return n
}

// Notifier receives notifications
type Notifier interface {
	Error(message string)
	Success(message string)
}

// Console writes notifications as single lines
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a notifier writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Error(message string) {
	c.write(New(SeverityError, message))
}

func (c *Console) Success(message string) {
	c.write(New(SeveritySuccess, message))
}

func (c *Console) write(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mark := "✓"
	if n.Severity == SeverityError {
		mark = "✗"
	}
	fmt.Fprintf(c.out, "%s %s: %s\n", mark, n.Title, n.Message)
}

// Recorder keeps every notification it receives
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Error(message string) {
	r.add(New(SeverityError, message))
}

func (r *Recorder) Success(message string) {
	r.add(New(SeveritySuccess, message))
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

// Discard drops every notification
var Discard Notifier = discard{}

type discard struct{}

func (discard) Error(string)   {}
func (discard) Success(string) {}
