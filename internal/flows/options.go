// Package flows implements the credential flows: sign-up with email verification,
// sign-in and the three-stage password reset.
//
// Each flow is a small state machine with an explicit transition table. A flow is
// opened, receives submits one at a time and is closed; closing cancels the request
// in flight and discards its response.
package flows

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/branchd-dev/storefront/internal/notify"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultRedirectDelay  = 2 * time.Second
)

// Option configures a flow
type Option func(*options)

type options struct {
	notifier       notify.Notifier
	logger         zerolog.Logger
	requestTimeout time.Duration
	redirectDelay  time.Duration
	redirect       func(path string)
	schedule       func(d time.Duration, f func()) func() bool
}

func defaultOptions() options {
	return options{
		notifier:       notify.Discard,
		logger:         zerolog.Nop(),
		requestTimeout: DefaultRequestTimeout,
		redirectDelay:  DefaultRedirectDelay,
		redirect:       func(string) {},
		schedule: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithNotifier sets where success and error messages go
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithLogger sets the flow logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRequestTimeout bounds each submit
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

// WithRedirectDelay sets the pause between completion and the follow-up redirect
func WithRedirectDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.redirectDelay = d
		}
	}
}

// WithRedirect sets the navigation hook called after a completed flow
func WithRedirect(f func(path string)) Option {
	return func(o *options) {
		if f != nil {
			o.redirect = f
		}
	}
}

// withScheduler replaces time.AfterFunc
func withScheduler(s func(d time.Duration, f func()) func() bool) Option {
	return func(o *options) { o.schedule = s }
}
