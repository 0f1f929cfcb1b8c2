package flows

import (
	"context"

	"github.com/branchd-dev/storefront/internal/cli/client"
)

// ResetStage is a stage of the password reset flow
type ResetStage string

const (
	StageEmail       ResetStage = "EMAIL"
	StageCodeCheck   ResetStage = "CODE_CHECK"
	StageNewPassword ResetStage = "NEW_PASSWORD"
	StageResetDone   ResetStage = "COMPLETED"
)

const (
	resetCodeSentMessage = "A password reset code was sent to your email address."
	redirectingMessage   = "Redirecting to sign-in..."
)

var resetTransitions = transitions[ResetStage]{
	StageEmail: {
		EventSubmitSucceeded: StageCodeCheck,
		EventSubmitFailed:    StageEmail,
		EventDismissed:       StageEmail,
	},
	StageCodeCheck: {
		EventSubmitSucceeded: StageNewPassword,
		EventSubmitFailed:    StageCodeCheck,
		EventDismissed:       StageEmail,
	},
	StageNewPassword: {
		EventSubmitSucceeded: StageResetDone,
		EventSubmitFailed:    StageNewPassword,
		EventDismissed:       StageEmail,
	},
	StageResetDone: {
		EventCompleted: StageEmail,
		EventDismissed: StageEmail,
	},
}

// PasswordResetAPI is the backend surface used by the reset flow
type PasswordResetAPI interface {
	ForgetPassword(ctx context.Context, email string) (string, error)
	ResetCodeCheck(ctx context.Context, req client.ResetCodeCheckRequest) (*client.ResetCodeCheckResult, error)
	ResetPassword(ctx context.Context, req client.ResetPasswordRequest) (string, error)
}

// ResetState is a snapshot of the reset flow. The new password and the temporary
// token are never exposed.
type ResetState struct {
	Open     bool
	Busy     bool
	Stage    ResetStage
	Email    string
	Code     string
	HasToken bool
}

// PasswordReset is the email, code, new password flow
type PasswordReset struct {
	api PasswordResetAPI
	m   *machine[ResetStage]

	email          string
	code           string
	newPassword    string
	temporaryToken string
}

// NewPasswordReset creates a closed reset flow
func NewPasswordReset(api PasswordResetAPI, opts ...Option) *PasswordReset {
	f := &PasswordReset{api: api}
	f.m = newMachine(StageEmail, resetTransitions, opts, f.clear)
	return f
}

func (f *PasswordReset) clear() {
	f.email = ""
	f.code = ""
	f.newPassword = ""
	f.temporaryToken = ""
}

// Open starts the flow lifetime. Requests are canceled when ctx is.
func (f *PasswordReset) Open(ctx context.Context) {
	f.m.open(ctx)
}

// Close discards every field, cancels any request in flight and returns to EMAIL
func (f *PasswordReset) Close() {
	f.m.close()
}

// Done is closed when the current lifetime ends, by Close or by the reset that
// follows a completed flow
func (f *PasswordReset) Done() <-chan struct{} {
	return f.m.done()
}

// State returns a snapshot of the flow
func (f *PasswordReset) State() ResetState {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return ResetState{
		Open:     f.m.life.open,
		Busy:     f.m.life.busy(),
		Stage:    f.m.stage,
		Email:    f.email,
		Code:     f.code,
		HasToken: f.temporaryToken != "",
	}
}

// SubmitEmail requests a reset code for email
func (f *PasswordReset) SubmitEmail(email string) error {
	msg, err := submit(f.m, StageEmail,
		func() { f.email = email },
		func(ctx context.Context) (string, error) {
			return f.api.ForgetPassword(ctx, email)
		},
		nil,
	)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = resetCodeSentMessage
	}
	f.m.opts.notifier.Success(msg)
	return nil
}

// SubmitCode checks the emailed code and keeps the temporary token it returns
func (f *PasswordReset) SubmitCode(code string) error {
	var email string
	res, err := submit(f.m, StageCodeCheck,
		func() {
			f.code = code
			email = f.email
		},
		func(ctx context.Context) (*client.ResetCodeCheckResult, error) {
			return f.api.ResetCodeCheck(ctx, client.ResetCodeCheckRequest{Email: email, Code: code})
		},
		func(res *client.ResetCodeCheckResult) error {
			f.temporaryToken = res.TemporaryToken
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

// SubmitNewPassword sets the new password. On success the flow completes and,
// after the redirect delay, fully resets and closes.
func (f *PasswordReset) SubmitNewPassword(password string) error {
	var token string
	msg, err := submit(f.m, StageNewPassword,
		func() {
			f.newPassword = password
			token = f.temporaryToken
		},
		func(ctx context.Context) (string, error) {
			return f.api.ResetPassword(ctx, client.ResetPasswordRequest{TemporaryToken: token, Password: password})
		},
		func(string) error {
			f.m.after(func() func() {
				_ = f.m.fire(EventCompleted)
				f.m.shutdown()
				return nil
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
	f.m.opts.notifier.Success(redirectingMessage)
	return nil
}
