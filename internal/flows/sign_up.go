package flows

import (
	"context"

	"github.com/branchd-dev/storefront/internal/cli/client"
)

// SignUpStage is a stage of the sign-up flow
type SignUpStage string

const (
	StageForm         SignUpStage = "FORM"
	StageAwaitingCode SignUpStage = "AWAITING_CODE"
	StageSignedUp     SignUpStage = "COMPLETED"
)

// SignInPath is where a completed sign-up redirects to
const SignInPath = "/sign-in"

const verifiedMessage = "Email verified. Redirecting to sign-in..."

var signUpTransitions = transitions[SignUpStage]{
	StageForm: {
		EventSubmitSucceeded: StageAwaitingCode,
		EventSubmitFailed:    StageForm,
		EventDismissed:       StageForm,
	},
	StageAwaitingCode: {
		EventSubmitSucceeded: StageSignedUp,
		EventSubmitFailed:    StageAwaitingCode,
		EventDismissed:       StageForm,
	},
	StageSignedUp: {
		EventCompleted: StageForm,
		EventDismissed: StageForm,
	},
}

var registrationMessages = map[string]string{
	"email":    "Please enter a valid email address.",
	"password": "Password must be at least 6 characters long.",
	"name":     "Name is required.",
	"lastname": "LastName is required.",
}

// Registration is the sign-up form
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Lastname string `json:"lastname" validate:"required"`
	Email    string `json:"email" validate:"simpleemail"`
	Password string `json:"password" validate:"min=6"`
}

// Validate checks the form without contacting the backend
func (r Registration) Validate() error {
	return validateStruct(r, registrationMessages)
}

// SignUpAPI is the backend surface used by the sign-up flow
type SignUpAPI interface {
	Register(ctx context.Context, req client.RegisterRequest) (*client.Result[client.PendingUser], error)
	VerifyEmail(ctx context.Context, req client.VerifyEmailRequest) (string, error)
}

// SignUpState is a snapshot of the sign-up flow. The password is never exposed.
type SignUpState struct {
	Open         bool
	Busy         bool
	Stage        SignUpStage
	Name         string
	Lastname     string
	Email        string
	PendingEmail string
	Code         string
}

// SignUp is the registration and email verification flow
type SignUp struct {
	api SignUpAPI
	m   *machine[SignUpStage]

	form    Registration
	pending *client.PendingUser
	code    string
}

// NewSignUp creates a closed sign-up flow
func NewSignUp(api SignUpAPI, opts ...Option) *SignUp {
	f := &SignUp{api: api}
	f.m = newMachine(StageForm, signUpTransitions, opts, f.clear)
	return f
}

func (f *SignUp) clear() {
	f.form = Registration{}
	f.pending = nil
	f.code = ""
}

// Open starts the flow lifetime
func (f *SignUp) Open(ctx context.Context) {
	f.m.open(ctx)
}

// Close discards every field and cancels any request in flight
func (f *SignUp) Close() {
	f.m.close()
}

// Done is closed when the current lifetime ends
func (f *SignUp) Done() <-chan struct{} {
	return f.m.done()
}

// State returns a snapshot of the flow
func (f *SignUp) State() SignUpState {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	st := SignUpState{
		Open:     f.m.life.open,
		Busy:     f.m.life.busy(),
		Stage:    f.m.stage,
		Name:     f.form.Name,
		Lastname: f.form.Lastname,
		Email:    f.form.Email,
		Code:     f.code,
	}
	if f.pending != nil {
		st.PendingEmail = f.pending.Email
	}
	return st
}

// Submit validates the form and registers a pending user. Validation failures
// return a *ValidationError and make no backend call.
func (f *SignUp) Submit(form Registration) error {
	f.m.mu.Lock()
	if err := f.m.expect(StageForm); err != nil {
		f.m.mu.Unlock()
		return err
	}
	if f.m.life.busy() {
		f.m.mu.Unlock()
		return ErrBusy
	}
	f.form = form
	f.m.mu.Unlock()

	if err := form.Validate(); err != nil {
		return err
	}

	res, err := submit(f.m, StageForm, nil,
		func(ctx context.Context) (*client.Result[client.PendingUser], error) {
			return f.api.Register(ctx, client.RegisterRequest{
				Name:     form.Name,
				Lastname: form.Lastname,
				Email:    form.Email,
				Password: form.Password,
			})
		},
		func(res *client.Result[client.PendingUser]) error {
			pending := res.Data
			f.pending = &pending
			f.code = ""
			return nil
		},
	)
	if err != nil {
		return err
	}
	if res.Message != "" {
		f.m.opts.notifier.Success(res.Message)
	}
	return nil
}

// Verify submits the emailed code for the pending user. On success the flow
// completes and redirects to sign-in after the redirect delay.
func (f *SignUp) Verify(code string) error {
	var pending client.PendingUser
	msg, err := submit(f.m, StageAwaitingCode,
		func() {
			f.code = code
			if f.pending != nil {
				pending = *f.pending
			}
		},
		func(ctx context.Context) (string, error) {
			return f.api.VerifyEmail(ctx, client.VerifyEmailRequest{
				Email:            pending.Email,
				VerificationCode: code,
				TempUser:         pending,
			})
		},
		func(string) error {
			f.m.after(func() func() {
				redirect := f.m.opts.redirect
				f.m.shutdown()
				return func() { redirect(SignInPath) }
			})
			return nil
		},
	)
	if err != nil {
		return err
	}
	if msg != "" {
		f.m.opts.notifier.Success(msg)
	}
	f.m.opts.notifier.Success(verifiedMessage)
	return nil
}

// Dismiss closes the code dialog and returns to the form, keeping what was typed.
// A verification in flight is canceled and its response discarded.
func (f *SignUp) Dismiss() error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if !f.m.life.open {
		return ErrFlowClosed
	}
	if f.m.stage != StageAwaitingCode {
		return ErrInvalidTransition
	}
	f.m.life.abort()
	f.pending = nil
	f.code = ""
	return f.m.fire(EventDismissed)
}
