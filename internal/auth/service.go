// Package auth implements the login, logout, and profile-edit flows on top
// of the session store.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"trainingportal/internal/api"
	"trainingportal/internal/session"
)

// Service wires the auth endpoints to the persisted session.
type Service struct {
	api      *api.Client
	store    *session.Store
	validate *validator.Validate
}

// NewService creates the auth service.
func NewService(client *api.Client, store *session.Store) *Service {
	return &Service{api: client, store: store, validate: validator.New()}
}

type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         session.User `json:"user"`
}

// Login authenticates against the backend and persists the resulting
// session. Validation failures never leave the device.
func (s *Service) Login(ctx context.Context, email, password string) (session.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return session.User{}, &api.ValidationError{Field: "email", Message: "email required"}
	}
	if s.validate.Var(email, "email") != nil {
		return session.User{}, &api.ValidationError{Field: "email", Message: "invalid email address"}
	}
	if password == "" {
		return session.User{}, &api.ValidationError{Field: "password", Message: "password required"}
	}

	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Post(ctx, "/auth/login", body, &resp); err != nil {
		return session.User{}, err
	}
	if err := s.store.SetAuth(resp.User, resp.AccessToken, resp.RefreshToken); err != nil {
		return session.User{}, err
	}
	return resp.User, nil
}

// Logout clears the persisted auth state; a restart afterwards lands on the
// unauthenticated flow.
func (s *Service) Logout() error {
	return s.store.Logout()
}

// ProfileUpdate is the editable subset of the profile.
type ProfileUpdate struct {
	Fullname string `json:"fullname" validate:"required"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=8"`
	Birthday string `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Avatar   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// UpdateProfile validates the edit, pushes it to the backend, and updates the
// stored profile on success.
func (s *Service) UpdateProfile(ctx context.Context, upd ProfileUpdate) (session.User, error) {
	upd.Fullname = strings.TrimSpace(upd.Fullname)
	upd.Phone = strings.TrimSpace(upd.Phone)
	if err := s.validate.Struct(upd); err != nil {
		return session.User{}, profileValidationError(err)
	}

	user, ok := s.store.User()
	if !ok {
		return session.User{}, &api.AuthError{Message: "not logged in"}
	}

	var updated session.User
	if err := s.api.Put(ctx, "/users/"+user.ID, upd, &updated); err != nil {
		return session.User{}, err
	}
	if updated.ID == "" {
		// Backend acknowledged without echoing the user; patch locally.
		updated = user
		updated.Fullname = upd.Fullname
		updated.Phone = upd.Phone
		updated.Birthday = upd.Birthday
		if upd.Avatar != "" {
			updated.Avatar = upd.Avatar
		}
	}
	if err := s.store.SetUser(updated); err != nil {
		return session.User{}, err
	}
	return updated, nil
}

func profileValidationError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		switch f.Field() {
		case "Fullname":
			return &api.ValidationError{Field: "fullname", Message: "full name is required"}
		case "Birthday":
			return &api.ValidationError{Field: "birthday", Message: "birthday must be YYYY-MM-DD"}
		case "Phone":
			return &api.ValidationError{Field: "phone", Message: "phone number is too short"}
		case "Avatar":
			return &api.ValidationError{Field: "avatarUrl", Message: "avatar must be a URL"}
		}
	}
	return &api.ValidationError{Message: "invalid profile data"}
}
