package flows

import (
	"context"

	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/models"
)

// SignInStage is the single stage of the sign-in flow
type SignInStage string

const StageCredentials SignInStage = "CREDENTIALS"

// HomePath is where a successful sign-in navigates to
const HomePath = "/home"

var signInTransitions = transitions[SignInStage]{
	StageCredentials: {
		EventSubmitSucceeded: StageCredentials,
		EventSubmitFailed:    StageCredentials,
		EventDismissed:       StageCredentials,
	},
}

var credentialMessages = map[string]string{
	"email":    "Email is required.",
	"password": "Password is required.",
}

// Credentials is the sign-in form
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignInAPI is the backend surface used by the sign-in flow
type SignInAPI interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResult, error)
}

// Authenticator records a successful sign-in, usually a *session.Store
type Authenticator interface {
	SignIn(ctx context.Context, user models.User, token string) error
}

// SignInState is a snapshot of the sign-in flow
type SignInState struct {
	Open  bool
	Busy  bool
	Stage SignInStage
	Email string
}

// SignIn exchanges credentials for a session
type SignIn struct {
	api  SignInAPI
	auth Authenticator
	m    *machine[SignInStage]

	email string
}

// NewSignIn creates a closed sign-in flow
func NewSignIn(api SignInAPI, auth Authenticator, opts ...Option) *SignIn {
	f := &SignIn{api: api, auth: auth}
	f.m = newMachine(StageCredentials, signInTransitions, opts, func() { f.email = "" })
	return f
}

// Open starts the flow lifetime
func (f *SignIn) Open(ctx context.Context) {
	f.m.open(ctx)
}

// Close discards the form and cancels any request in flight
func (f *SignIn) Close() {
	f.m.close()
}

// Done is closed when the current lifetime ends
func (f *SignIn) Done() <-chan struct{} {
	return f.m.done()
}

// State returns a snapshot of the flow
func (f *SignIn) State() SignInState {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return SignInState{
		Open:  f.m.life.open,
		Busy:  f.m.life.busy(),
		Stage: f.m.stage,
		Email: f.email,
	}
}

// Submit logs in and stores the session. On success the flow closes and the
// redirect hook is called with the home path.
func (f *SignIn) Submit(email, password string) (*models.User, error) {
	creds := Credentials{Email: email, Password: password}
	if err := validateStruct(creds, credentialMessages); err != nil {
		return nil, err
	}

	res, err := submit(f.m, StageCredentials,
		func() { f.email = email },
		func(ctx context.Context) (*client.LoginResult, error) {
			return f.api.Login(ctx, client.LoginRequest{Email: email, Password: password})
		},
		func(res *client.LoginResult) error {
			// The request context is canceled once the call returns
			return f.auth.SignIn(f.m.life.ctx, res.User, res.Token)
		},
	)
	if err != nil {
		return nil, err
	}

	f.m.opts.logger.Info().Str("user_id", res.User.ID).Msg("Signed in")
	f.m.close()
	f.m.opts.redirect(HomePath)
	return &res.User, nil
}
