// Package session holds the authenticated identity for the client. It is
// an injected context, not a process-wide singleton. The workflow engine
// never touches it; only the host layer reads "is this session
// authenticated" through it.
package session

import (
	"errors"
	"slices"
	"sync"
)

// Role mirrors the backend user roles.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleInspector Role = "INSPECTOR"
	RoleViewer    Role = "VIEWER"
)

// User is the authenticated identity.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// State is everything the session persists across runs.
type State struct {
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Store persists session state under a single named store.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

// AuthData is what a successful login hands to the session. Token
// issuance and refresh are the backend's business.
type AuthData struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the mutable, persisted authentication context.
type Session struct {
	mu    sync.RWMutex
	state *State
	store Store
}

// New restores a session from its store. A missing or empty store yields
// an unauthenticated session, not an error.
func New(store Store) (*Session, error) {
	s := &Session{store: store}

	if store != nil {
		state, err := store.Load()
		if err != nil {
			return nil, err
		}

		s.state = state
	}

	return s, nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state != nil && s.state.Token != ""
}

// CurrentUser returns the authenticated user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil
	}

	return s.state.User
}

// Token returns the access token for API calls.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return ""
	}

	return s.state.Token
}

// Login installs a fresh identity and persists it.
func (s *Session) Login(data AuthData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &State{
		User:         data.User,
		Token:        data.AccessToken,
		RefreshToken: data.RefreshToken,
	}

	if s.store == nil {
		return nil
	}

	return s.store.Save(s.state)
}

// UpdateUser merges fresh profile data into the stored identity.
func (s *Session) UpdateUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		return ErrNotAuthenticated
	}

	s.state.User = user

	if s.store == nil {
		return nil
	}

	return s.store.Save(s.state)
}

// Logout drops the identity and clears the persisted store.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = nil

	if s.store == nil {
		return nil
	}

	return s.store.Clear()
}

func (s *Session) HasRole(role Role) bool {
	user := s.CurrentUser()

	return user != nil && user.Role == role
}

func (s *Session) CanCreate() bool {
	return s.hasAnyRole(RoleAdmin, RoleManager, RoleInspector)
}

func (s *Session) CanEdit() bool {
	return s.hasAnyRole(RoleAdmin, RoleManager)
}

func (s *Session) CanDelete() bool {
	return s.hasAnyRole(RoleAdmin)
}

func (s *Session) hasAnyRole(roles ...Role) bool {
	user := s.CurrentUser()
	if user == nil {
		return false
	}

	return slices.Contains(roles, user.Role)
}
