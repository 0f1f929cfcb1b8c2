package flows

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/notify"
)

type fakeResetAPI struct {
	mu        sync.Mutex
	calls     []string
	forgetErr error
	checkErr  error
	resetErr  error
	gate      *gate

	lastCheck client.ResetCodeCheckRequest
	lastReset client.ResetPasswordRequest
}

func (f *fakeResetAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeResetAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeResetAPI) ForgetPassword(ctx context.Context, email string) (string, error) {
	f.record("forget")
	if err := f.gate.wait(ctx); err != nil {
		return "", err
	}
	if f.forgetErr != nil {
		return "", f.forgetErr
	}
	return "Reset code sent", nil
}

func (f *fakeResetAPI) ResetCodeCheck(ctx context.Context, req client.ResetCodeCheckRequest) (*client.ResetCodeCheckResult, error) {
	f.record("check")
	f.mu.Lock()
	f.lastCheck = req
	f.mu.Unlock()
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return &client.ResetCodeCheckResult{TemporaryToken: "temp-1", Message: "Code verified"}, nil
}

func (f *fakeResetAPI) ResetPassword(ctx context.Context, req client.ResetPasswordRequest) (string, error) {
	f.record("reset")
	f.mu.Lock()
	f.lastReset = req
	f.mu.Unlock()
	if f.resetErr != nil {
		return "", f.resetErr
	}
	return "Password updated", nil
}

func newTestReset(api *fakeResetAPI, opts ...Option) (*PasswordReset, *notify.Recorder, *manualClock) {
	rec := &notify.Recorder{}
	clock := newManualClock()
	opts = append([]Option{WithNotifier(rec), withScheduler(clock.schedule)}, opts...)
	return NewPasswordReset(api, opts...), rec, clock
}

func TestPasswordReset_CompletesAndResets(t *testing.T) {
	api := &fakeResetAPI{}
	flow, rec, clock := newTestReset(api)
	flow.Open(context.Background())

	require.NoError(t, flow.SubmitEmail("ada@example.com"))
	assert.Equal(t, StageCodeCheck, flow.State().Stage)

	require.NoError(t, flow.SubmitCode("123456"))
	st := flow.State()
	assert.Equal(t, StageNewPassword, st.Stage)
	assert.True(t, st.HasToken)
	assert.Equal(t, client.ResetCodeCheckRequest{Email: "ada@example.com", Code: "123456"}, api.lastCheck)

	require.NoError(t, flow.SubmitNewPassword("newsecret"))
	assert.Equal(t, StageResetDone, flow.State().Stage)
	assert.Equal(t, client.ResetPasswordRequest{TemporaryToken: "temp-1", Password: "newsecret"}, api.lastReset)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Redirecting to sign-in...", last.Message)
	assert.Equal(t, []time.Duration{DefaultRedirectDelay}, clock.scheduled())

	select {
	case <-flow.Done():
		t.Fatal("flow must stay open until the redirect delay passed")
	default:
	}

	clock.fire()

	st = flow.State()
	assert.Equal(t, ResetState{Stage: StageEmail}, st)
	select {
	case <-flow.Done():
	default:
		t.Fatal("expected Done to be closed after the reset")
	}
}

func TestPasswordReset_FailureKeepsStageAndFields(t *testing.T) {
	api := &fakeResetAPI{checkErr: &client.Error{StatusCode: 400, Message: "Invalid code"}}
	flow, rec, _ := newTestReset(api)
	flow.Open(context.Background())

	require.NoError(t, flow.SubmitEmail("ada@example.com"))

	err := flow.SubmitCode("000000")
	require.Error(t, err)

	st := flow.State()
	assert.Equal(t, StageCodeCheck, st.Stage)
	assert.Equal(t, "ada@example.com", st.Email)
	assert.Equal(t, "000000", st.Code)
	assert.False(t, st.Busy)

	last, _ := rec.Last()
	assert.Equal(t, notify.SeverityError, last.Severity)
	assert.Equal(t, "Invalid code", last.Message)

	// A retry from the same stage is allowed
	api.checkErr = nil
	require.NoError(t, flow.SubmitCode("123456"))
	assert.Equal(t, StageNewPassword, flow.State().Stage)
}

func TestPasswordReset_RejectsOutOfOrderSubmit(t *testing.T) {
	api := &fakeResetAPI{}
	flow, _, _ := newTestReset(api)
	flow.Open(context.Background())

	assert.ErrorIs(t, flow.SubmitCode("123456"), ErrInvalidTransition)
	assert.ErrorIs(t, flow.SubmitNewPassword("pw"), ErrInvalidTransition)
	assert.Equal(t, 0, api.callCount())
	assert.Equal(t, StageEmail, flow.State().Stage)
}

func TestPasswordReset_ClosedFlowRejectsSubmit(t *testing.T) {
	api := &fakeResetAPI{}
	flow, _, _ := newTestReset(api)

	assert.ErrorIs(t, flow.SubmitEmail("ada@example.com"), ErrFlowClosed)
	assert.Equal(t, 0, api.callCount())
}

func TestPasswordReset_BusyRejectsSecondSubmit(t *testing.T) {
	g := newGate()
	api := &fakeResetAPI{gate: g}
	flow, _, _ := newTestReset(api)
	flow.Open(context.Background())
	defer flow.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- flow.SubmitEmail("ada@example.com") }()
	waitStarted(t, g)

	assert.True(t, flow.State().Busy)
	assert.ErrorIs(t, flow.SubmitEmail("ada@example.com"), ErrBusy)
	assert.Equal(t, 1, api.callCount())

	close(g.release)
	require.NoError(t, <-errCh)
	assert.Equal(t, StageCodeCheck, flow.State().Stage)
}

func TestPasswordReset_CloseDiscardsLateResponse(t *testing.T) {
	g := newGate()
	api := &fakeResetAPI{gate: g}
	flow, rec, _ := newTestReset(api)
	flow.Open(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- flow.SubmitEmail("ada@example.com") }()
	waitStarted(t, g)

	flow.Close()
	assert.ErrorIs(t, <-errCh, ErrFlowClosed)

	assert.Equal(t, ResetState{Stage: StageEmail}, flow.State())
	assert.Empty(t, rec.All())

	// Reopening starts from scratch
	flow.Open(context.Background())
	api.gate = nil
	require.NoError(t, flow.SubmitEmail("grace@example.com"))
	assert.Equal(t, "grace@example.com", flow.State().Email)
	flow.Close()
}

func TestPasswordReset_CloseStopsPendingReset(t *testing.T) {
	api := &fakeResetAPI{}
	flow, _, clock := newTestReset(api)
	flow.Open(context.Background())

	require.NoError(t, flow.SubmitEmail("ada@example.com"))
	require.NoError(t, flow.SubmitCode("123456"))
	require.NoError(t, flow.SubmitNewPassword("newsecret"))

	flow.Close()
	flow.Open(context.Background())
	require.NoError(t, flow.SubmitEmail("grace@example.com"))

	// The stale timer was stopped and must not reset the new lifetime
	clock.fire()
	st := flow.State()
	assert.True(t, st.Open)
	assert.Equal(t, StageCodeCheck, st.Stage)
	flow.Close()
}

func TestPasswordReset_RequestTimeout(t *testing.T) {
	g := newGate()
	api := &fakeResetAPI{gate: g}
	flow, rec, _ := newTestReset(api, WithRequestTimeout(20*time.Millisecond))
	flow.Open(context.Background())
	defer flow.Close()

	err := flow.SubmitEmail("ada@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	st := flow.State()
	assert.Equal(t, StageEmail, st.Stage)
	assert.False(t, st.Busy)

	last, _ := rec.Last()
	assert.Equal(t, client.FallbackMessage, last.Message)
}

func TestPasswordReset_ParentContextCancel(t *testing.T) {
	g := newGate()
	api := &fakeResetAPI{gate: g}
	flow, _, _ := newTestReset(api)

	ctx, cancel := context.WithCancel(context.Background())
	flow.Open(ctx)
	defer flow.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- flow.SubmitEmail("ada@example.com") }()
	waitStarted(t, g)

	cancel()
	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageEmail, flow.State().Stage)
}
