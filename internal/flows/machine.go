package flows

import (
	"context"
	"sync"

	"github.com/branchd-dev/storefront/internal/cli/client"
)

// machine is the state shared by every flow: the current stage, its transition
// table, the open lifetime and a pending follow-up timer.
type machine[S comparable] struct {
	mu      sync.Mutex
	opts    options
	table   transitions[S]
	initial S
	stage   S
	life    lifetime
	timer   func() bool
	reset   func()
}

func newMachine[S comparable](initial S, table transitions[S], opts []Option, reset func()) *machine[S] {
	return &machine[S]{
		opts:    buildOptions(opts),
		table:   table,
		initial: initial,
		stage:   initial,
		life:    newLifetime(),
		reset:   reset,
	}
}

// fire applies an event. Callers hold mu.
func (m *machine[S]) fire(ev Event) error {
	next, err := m.table.next(m.stage, ev)
	if err != nil {
		return err
	}
	m.opts.logger.Debug().Interface("from", m.stage).Interface("to", next).Str("event", string(ev)).Msg("Flow transition")
	m.stage = next
	return nil
}

// expect rejects a submit made from the wrong stage. Callers hold mu.
func (m *machine[S]) expect(stage S) error {
	if !m.life.open {
		return ErrFlowClosed
	}
	if m.stage != stage {
		return ErrInvalidTransition
	}
	return nil
}

func (m *machine[S]) open(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.life.start(ctx)
}

// shutdown ends the lifetime and clears every field. Callers hold mu.
func (m *machine[S]) shutdown() {
	if m.timer != nil {
		m.timer()
		m.timer = nil
	}
	m.life.stop()
	m.stage = m.initial
	if m.reset != nil {
		m.reset()
	}
}

func (m *machine[S]) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown()
}

// after schedules f once the redirect delay has passed, unless the lifetime ends
// first. f runs with mu held; the func it returns, if any, runs after mu is
// released. Callers hold mu.
func (m *machine[S]) after(f func() func()) {
	epoch := m.life.epoch
	m.timer = m.opts.schedule(m.opts.redirectDelay, func() {
		m.mu.Lock()
		if m.life.epoch != epoch {
			m.mu.Unlock()
			return
		}
		m.timer = nil
		then := f()
		m.mu.Unlock()
		if then != nil {
			then()
		}
	})
}

func (m *machine[S]) done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.life.done
}

// submit runs one backend call for stage. prepare records the submitted fields
// before the call; apply stores the response on success and only runs while the
// lifetime the call began in is still current. Both run with mu held; an apply
// error fails the submit. Notifications are sent after mu is released.
func submit[S comparable, T any](
	m *machine[S],
	stage S,
	prepare func(),
	call func(ctx context.Context) (T, error),
	apply func(T) error,
) (T, error) {
	var zero T

	m.mu.Lock()
	if err := m.expect(stage); err != nil {
		m.mu.Unlock()
		return zero, err
	}
	ctx, epoch, err := m.life.begin(m.opts.requestTimeout)
	if err != nil {
		m.mu.Unlock()
		return zero, err
	}
	if prepare != nil {
		prepare()
	}
	m.mu.Unlock()

	res, callErr := call(ctx)

	m.mu.Lock()
	if !m.life.finish(epoch) {
		m.mu.Unlock()
		m.opts.logger.Debug().Interface("stage", stage).Msg("Discarding response for closed flow")
		return zero, ErrFlowClosed
	}
	if callErr == nil && apply != nil {
		callErr = apply(res)
	}
	if callErr != nil {
		_ = m.fire(EventSubmitFailed)
		m.mu.Unlock()
		m.opts.logger.Debug().Err(callErr).Interface("stage", stage).Msg("Flow submit failed")
		m.opts.notifier.Error(client.Message(callErr))
		return zero, callErr
	}
	err = m.fire(EventSubmitSucceeded)
	m.mu.Unlock()
	return res, err
}
