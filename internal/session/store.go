// Package session holds the authenticated user, tokens, and the backend base
// URL. The in-memory state is the single source of truth while the process
// runs; every mutation is written through to a pluggable persistence backend
// so the session survives a restart.
package session

import (
	"strings"
	"sync"

	"trainingportal/internal/api"
)

// Role values gate which actions a user may invoke.
const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
)

// User is the profile stored alongside the tokens.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Fullname string   `json:"fullname"`
	Phone    string   `json:"phone,omitempty"`
	Birthday string   `json:"birthday,omitempty"`
	Avatar   string   `json:"avatarUrl,omitempty"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// State is the persisted shape: auth session plus server configuration.
type State struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	LoggedIn     bool   `json:"loggedIn"`
	BaseURL      string `json:"baseUrl"`
}

// Backend persists session state across restarts.
type Backend interface {
	// Load returns the stored state and whether any state was found.
	Load() (State, bool, error)
	Save(State) error
	Clear() error
}

// Store is the mutable session owned by the process. It implements
// api.ConfigProvider so the HTTP layer always sees the current base URL and
// token.
type Store struct {
	mu      sync.RWMutex
	state   State
	backend Backend
}

// Open rehydrates the store from the backend, initialising the base URL to
// defaultBaseURL when no state was persisted yet.
func Open(backend Backend, defaultBaseURL string) (*Store, error) {
	state, found, err := backend.Load()
	if err != nil {
		return nil, err
	}
	if !found || state.BaseURL == "" {
		state.BaseURL = defaultBaseURL
	}
	return &Store{state: state, backend: backend}, nil
}

// BaseURL returns the current backend base URL.
func (s *Store) BaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.BaseURL
}

// Token returns the current access token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// LoggedIn reports whether an authenticated session exists.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn
}

// User returns the current profile. The second result is false when nobody is
// logged in.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return User{}, false
	}
	return *s.state.User, true
}

// SetAuth records a successful login and persists it.
func (s *Store) SetAuth(user User, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &user
	s.state.AccessToken = accessToken
	s.state.RefreshToken = refreshToken
	s.state.LoggedIn = true
	return s.backend.Save(s.state)
}

// SetUser replaces the stored profile after an edit.
func (s *Store) SetUser(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &user
	return s.backend.Save(s.state)
}

// SetBaseURL updates the backend address used by every subsequent request.
func (s *Store) SetBaseURL(url string) error {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return &api.ValidationError{Field: "baseUrl", Message: "must start with http:// or https://"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.BaseURL = strings.TrimRight(url, "/")
	return s.backend.Save(s.state)
}

// Logout clears the auth session. The base URL is configuration, not auth
// state, so it survives.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = nil
	s.state.AccessToken = ""
	s.state.RefreshToken = ""
	s.state.LoggedIn = false
	return s.backend.Save(s.state)
}
