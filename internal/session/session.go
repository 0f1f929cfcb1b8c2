// Package session owns the authenticated identity of the current process.
//
// A Store is the only writer of session state. It keeps an in-memory copy and a
// persisted copy that are updated together, and it is hydrated from persistence
// once at startup before any command reads it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/branchd-dev/storefront/internal/models"
)

// Persisted key names, matching the browser storage keys of the web storefront.
const (
	KeyUser  = "user"
	KeyToken = "userToken"
)

var (
	// ErrInvalidSession is returned when a session is missing its token or user id
	ErrInvalidSession = errors.New("invalid session")

	errNoSession = errors.New("no persisted session")
)

// Session is a snapshot of the authentication state
type Session struct {
	IsAuthenticated bool
	Token           string
	User            models.User
	IsLoading       bool
}

// Snapshot is the persisted form of a session: the JSON-serialized user record and
// the plain bearer token. An absent key is an empty string.
type Snapshot struct {
	User  string
	Token string
}

// Persistence stores a Snapshot. Write must replace both keys atomically.
type Persistence interface {
	Read(ctx context.Context) (Snapshot, error)
	Write(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// Store holds the session for one backend profile
type Store struct {
	mu          sync.RWMutex
	persistence Persistence
	logger      zerolog.Logger
	current     Session
}

// NewStore creates a store in its loading state. Call Hydrate before reading it.
func NewStore(persistence Persistence, logger zerolog.Logger) *Store {
	return &Store{
		persistence: persistence,
		logger:      logger,
		current:     Session{IsLoading: true},
	}
}

// Hydrate loads the persisted session. Missing, partial or malformed data leaves the
// store signed out; none of those cases is an error for the caller.
func (s *Store) Hydrate(ctx context.Context) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Session{}
	user, token, err := s.load(ctx)
	switch {
	case err == nil:
		next = Session{IsAuthenticated: true, Token: token, User: user}
	case errors.Is(err, errNoSession):
		s.logger.Debug().Msg("No persisted session")
	case errors.Is(err, ErrInvalidSession):
		s.logger.Info().Err(err).Msg("Discarding malformed persisted session")
	default:
		s.logger.Warn().Err(err).Msg("Failed to read persisted session")
	}

	s.current = next
	return s.current
}

func (s *Store) load(ctx context.Context) (models.User, string, error) {
	snap, err := s.persistence.Read(ctx)
	if err != nil {
		return models.User{}, "", err
	}
	if snap.User == "" || snap.Token == "" {
		return models.User{}, "", errNoSession
	}

	var user models.User
	if err := json.Unmarshal([]byte(snap.User), &user); err != nil {
		return models.User{}, "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if user.ID == "" {
		return models.User{}, "", fmt.Errorf("%w: user has no id", ErrInvalidSession)
	}

	return user, snap.Token, nil
}

// SignIn records a successful authentication. Persistence is written first; if it
// fails the in-memory session is left untouched.
func (s *Store) SignIn(ctx context.Context, user models.User, token string) error {
	if token == "" || user.ID == "" {
		return fmt.Errorf("%w: token and user id are required", ErrInvalidSession)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistence.Write(ctx, Snapshot{User: string(data), Token: token}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.current = Session{
		IsAuthenticated: true,
		Token:           token,
		User:            user,
		IsLoading:       s.current.IsLoading,
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("Session signed in")
	return nil
}

// SignOut clears persistence and resets the session. It is idempotent.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistence.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.current = Session{IsLoading: s.current.IsLoading}
	s.logger.Debug().Msg("Session signed out")
	return nil
}

// Session returns a copy of the current session
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
