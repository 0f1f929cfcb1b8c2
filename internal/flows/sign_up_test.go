package flows

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/notify"
)

type fakeSignUpAPI struct {
	mu          sync.Mutex
	registers   int
	verifies    int
	verifyErr   error
	gate        *gate
	lastVerify  client.VerifyEmailRequest
	lastRequest client.RegisterRequest
}

func (f *fakeSignUpAPI) Register(ctx context.Context, req client.RegisterRequest) (*client.Result[client.PendingUser], error) {
	f.mu.Lock()
	f.registers++
	f.lastRequest = req
	f.mu.Unlock()
	return &client.Result[client.PendingUser]{
		Message: "Verification code sent",
		Data: client.PendingUser{
			Email:            req.Email,
			Name:             req.Name,
			Lastname:         req.Lastname,
			Password:         "hashed",
			VerificationCode: "hashed-code",
			VerificationTime: json.RawMessage(`"2026-10-14T10:00:00Z"`),
		},
	}, nil
}

func (f *fakeSignUpAPI) VerifyEmail(ctx context.Context, req client.VerifyEmailRequest) (string, error) {
	f.mu.Lock()
	f.verifies++
	f.lastVerify = req
	f.mu.Unlock()
	if err := f.gate.wait(ctx); err != nil {
		return "", err
	}
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return "Email verified", nil
}

var validForm = Registration{Name: "Ada", Lastname: "Lovelace", Email: "ada@example.com", Password: "secret1"}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name   string
		form   Registration
		fields map[string]string
	}{
		{name: "valid", form: validForm},
		{
			name: "empty form",
			form: Registration{},
			fields: map[string]string{
				"email":    "Please enter a valid email address.",
				"password": "Password must be at least 6 characters long.",
				"name":     "Name is required.",
				"lastname": "LastName is required.",
			},
		},
		{
			name:   "email without dot",
			form:   Registration{Name: "A", Lastname: "B", Email: "ada@example", Password: "secret1"},
			fields: map[string]string{"email": "Please enter a valid email address."},
		},
		{
			name:   "short password",
			form:   Registration{Name: "A", Lastname: "B", Email: "a@b.c", Password: "12345"},
			fields: map[string]string{"password": "Password must be at least 6 characters long."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Fields)
		})
	}
}

func newTestSignUp(api *fakeSignUpAPI) (*SignUp, *notify.Recorder, *manualClock, *[]string) {
	rec := &notify.Recorder{}
	clock := newManualClock()
	var redirects []string
	flow := NewSignUp(api,
		WithNotifier(rec),
		withScheduler(clock.schedule),
		WithRedirect(func(path string) { redirects = append(redirects, path) }),
	)
	return flow, rec, clock, &redirects
}

func TestSignUp_ValidationMakesNoCall(t *testing.T) {
	api := &fakeSignUpAPI{}
	flow, rec, _, _ := newTestSignUp(api)
	flow.Open(context.Background())
	defer flow.Close()

	err := flow.Submit(Registration{Name: "Ada", Email: "nope"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "lastname")

	assert.Equal(t, 0, api.registers)
	assert.Empty(t, rec.All())

	st := flow.State()
	assert.Equal(t, StageForm, st.Stage)
	assert.Equal(t, "Ada", st.Name)
}

func TestSignUp_VerifyAndRedirect(t *testing.T) {
	api := &fakeSignUpAPI{}
	flow, rec, clock, redirects := newTestSignUp(api)
	flow.Open(context.Background())

	require.NoError(t, flow.Submit(validForm))
	st := flow.State()
	assert.Equal(t, StageAwaitingCode, st.Stage)
	assert.Equal(t, "ada@example.com", st.PendingEmail)
	assert.Equal(t, "Lovelace", api.lastRequest.Lastname)

	require.NoError(t, flow.Verify("123456"))
	assert.Equal(t, StageSignedUp, flow.State().Stage)

	assert.Equal(t, "ada@example.com", api.lastVerify.Email)
	assert.Equal(t, "123456", api.lastVerify.VerificationCode)
	assert.Equal(t, "hashed-code", api.lastVerify.TempUser.VerificationCode)
	assert.JSONEq(t, `"2026-10-14T10:00:00Z"`, string(api.lastVerify.TempUser.VerificationTime))

	last, _ := rec.Last()
	assert.Equal(t, "Email verified. Redirecting to sign-in...", last.Message)

	assert.Empty(t, *redirects)
	clock.fire()
	assert.Equal(t, []string{"/sign-in"}, *redirects)

	st = flow.State()
	assert.False(t, st.Open)
	assert.Equal(t, StageForm, st.Stage)
	assert.Empty(t, st.Email)
}

func TestSignUp_VerifyFailureStaysAwaitingCode(t *testing.T) {
	api := &fakeSignUpAPI{verifyErr: &client.Error{StatusCode: 400, Message: "Verification code is wrong"}}
	flow, rec, clock, redirects := newTestSignUp(api)
	flow.Open(context.Background())
	defer flow.Close()

	require.NoError(t, flow.Submit(validForm))
	require.Error(t, flow.Verify("000000"))

	st := flow.State()
	assert.Equal(t, StageAwaitingCode, st.Stage)
	assert.Equal(t, "000000", st.Code)
	assert.Equal(t, "ada@example.com", st.PendingEmail)

	last, _ := rec.Last()
	assert.Equal(t, "Verification code is wrong", last.Message)

	clock.fire()
	assert.Empty(t, *redirects)
}

func TestSignUp_DismissKeepsForm(t *testing.T) {
	api := &fakeSignUpAPI{}
	flow, _, _, _ := newTestSignUp(api)
	flow.Open(context.Background())
	defer flow.Close()

	assert.ErrorIs(t, flow.Dismiss(), ErrInvalidTransition)

	require.NoError(t, flow.Submit(validForm))
	require.NoError(t, flow.Dismiss())

	st := flow.State()
	assert.Equal(t, StageForm, st.Stage)
	assert.Equal(t, "Ada", st.Name)
	assert.Equal(t, "ada@example.com", st.Email)
	assert.Empty(t, st.PendingEmail)

	assert.ErrorIs(t, flow.Verify("123456"), ErrInvalidTransition)
}

func TestSignUp_DismissDiscardsVerifyInFlight(t *testing.T) {
	g := newGate()
	api := &fakeSignUpAPI{gate: g}
	flow, rec, _, _ := newTestSignUp(api)
	flow.Open(context.Background())
	defer flow.Close()

	require.NoError(t, flow.Submit(validForm))

	errCh := make(chan error, 1)
	go func() { errCh <- flow.Verify("123456") }()
	waitStarted(t, g)

	require.NoError(t, flow.Dismiss())
	assert.ErrorIs(t, <-errCh, ErrFlowClosed)

	st := flow.State()
	assert.Equal(t, StageForm, st.Stage)
	assert.False(t, st.Busy)
	assert.True(t, st.Open)

	// Only the registration message was shown
	assert.Len(t, rec.All(), 1)
}

func (f *fakeSignUpAPI) verifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifies
}

func TestSignUp_BusyRejectsSecondVerify(t *testing.T) {
	g := newGate()
	api := &fakeSignUpAPI{gate: g}
	flow, _, _, _ := newTestSignUp(api)
	flow.Open(context.Background())
	defer flow.Close()

	require.NoError(t, flow.Submit(validForm))

	errCh := make(chan error, 1)
	go func() { errCh <- flow.Verify("123456") }()
	waitStarted(t, g)

	assert.True(t, flow.State().Busy)
	assert.ErrorIs(t, flow.Verify("123456"), ErrBusy)
	assert.ErrorIs(t, flow.Submit(validForm), ErrInvalidTransition)
	assert.Equal(t, 1, api.verifyCount())

	close(g.release)
	require.NoError(t, <-errCh)
	assert.Equal(t, StageSignedUp, flow.State().Stage)
	assert.Equal(t, 1, api.verifyCount())
}
