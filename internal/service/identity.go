package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/homescout/internal/logger"
	"github.com/dtroode/homescout/internal/model"
	"github.com/dtroode/homescout/internal/state"
)

var _ model.PrincipalProvider = (*Identity)(nil)

// Identity owns the user set and the current session.
type Identity struct {
	mu        sync.RWMutex
	users     []model.User
	principal *model.User

	store  *state.Store
	hasher model.PasswordHasher
	tokens model.TokenManager
	logger *logger.Logger
	strict bool
	now    func() time.Time
}

// NewIdentity creates an Identity with no users and no session. Call Restore to
// rehydrate persisted state. With strict set, corrupt persisted users fail Restore
// instead of being replaced by an empty set.
func NewIdentity(
	store *state.Store,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	logger *logger.Logger,
	strict bool,
) *Identity {
	return &Identity{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		strict: strict,
		now:    time.Now,
	}
}

// Restore loads the user set and resolves the remembered session, if any.
// A session token that is malformed, expired or points at an unknown user
// leaves the identity anonymous.
func (s *Identity) Restore(ctx context.Context) error {
	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrCorruptState) || s.strict {
			s.logger.Error("Identity service: failed to load users",
				"error", err.Error())
			return fmt.Errorf("failed to load users: %w", err)
		}
		s.logger.Warn("Identity service: persisted users are corrupt, starting empty",
			"error", err.Error())
		users = []model.User{}
	}

	token, err := s.store.LoadSession(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrCorruptState) || s.strict {
			return fmt.Errorf("failed to load session: %w", err)
		}
		s.logger.Warn("Identity service: persisted session is corrupt, ignoring",
			"error", err.Error())
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = users
	s.principal = s.resolveSession(token)

	s.logger.Debug("Identity service: state restored",
		"users", len(users),
		"authenticated", s.principal != nil)

	return nil
}

func (s *Identity) resolveSession(token string) *model.User {
	if token == "" {
		return nil
	}

	userID, err := s.tokens.ParseSessionToken(token)
	if errors.Is(err, model.ErrSessionExpired) {
		s.logger.Info("Identity service: session expired, signing out")
		return nil
	}
	if err != nil {
		s.logger.Warn("Identity service: discarding invalid session",
			"error", err.Error())
		return nil
	}

	idx := slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == userID })
	if idx < 0 {
		s.logger.Info("Identity service: session refers to unknown user",
			"user_id", userID)
		return nil
	}

	u := s.users[idx]
	return &u
}

// Register creates a user, persists it and signs it in.
func (s *Identity) Register(ctx context.Context, email, password, name string) (model.User, error) {
	s.logger.Debug("Identity service: registering user",
		"email", email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByEmail(email) >= 0 {
		s.logger.Info("Identity service: email already registered",
			"email", email)
		return model.User{}, model.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := model.User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	prev := s.users
	next := append(slices.Clone(prev), user)
	if err := s.store.SaveUsers(ctx, next); err != nil {
		s.logger.Error("Identity service: failed to save users",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to save users: %w", err)
	}
	s.users = next

	if err := s.startSession(ctx, user); err != nil {
		// Undo the user so the same email can register again.
		s.users = prev
		if rbErr := s.store.SaveUsers(ctx, prev); rbErr != nil {
			s.logger.Error("Identity service: failed to roll back registration",
				"email", email,
				"error", rbErr.Error())
			err = errors.Join(err, fmt.Errorf("failed to roll back users: %w", rbErr))
		}
		return model.User{}, err
	}

	s.logger.Info("Identity service: user registered",
		"user_id", user.ID,
		"email", email)

	return user, nil
}

// Authenticate signs in the user matching email and password.
func (s *Identity) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	s.logger.Debug("Identity service: authenticating user",
		"email", email)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexByEmail(email)
	if idx < 0 {
		return model.User{}, model.ErrInvalidCredentials
	}
	user := s.users[idx]

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		s.logger.Error("Identity service: failed to verify password",
			"user_id", user.ID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.Info("Identity service: password mismatch",
			"email", email)
		return model.User{}, model.ErrInvalidCredentials
	}

	if err := s.startSession(ctx, user); err != nil {
		return model.User{}, err
	}

	s.logger.Info("Identity service: user authenticated",
		"user_id", user.ID)

	return user, nil
}

// startSession persists a session token for user and makes it the principal.
// Callers hold s.mu.
func (s *Identity) startSession(ctx context.Context, user model.User) error {
	token, err := s.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.store.SaveSession(ctx, token); err != nil {
		s.logger.Error("Identity service: failed to save session",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.principal = &user
	return nil
}

// EndSession signs out. Signing out without a session is a no-op that still
// clears any remembered token.
func (s *Identity) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.principal = nil

	if err := s.store.ClearSession(ctx); err != nil {
		s.logger.Error("Identity service: failed to clear session",
			"error", err.Error())
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.logger.Debug("Identity service: session ended")
	return nil
}

// CurrentPrincipal returns the signed-in user.
func (s *Identity) CurrentPrincipal() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.principal == nil {
		return model.User{}, false
	}
	return *s.principal, true
}

// Users returns a copy of the registered users in registration order.
func (s *Identity) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.users)
}

func (s *Identity) indexByEmail(email string) int {
	return slices.IndexFunc(s.users, func(u model.User) bool { return u.Email == email })
}
