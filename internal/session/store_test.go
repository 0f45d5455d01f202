package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"trainingportal/internal/api"
)

func testUser() User {
	return User{
		ID:       "u-1",
		Email:    "student@example.com",
		Fullname: "A Student",
		Roles:    []string{RoleStudent},
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	backend := NewFileBackend(path)

	store, err := Open(backend, "http://localhost:3000")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store.LoggedIn() {
		t.Fatal("fresh store should be logged out")
	}
	if err := store.SetAuth(testUser(), "access-1", "refresh-1"); err != nil {
		t.Fatalf("SetAuth failed: %v", err)
	}

	// Simulate an app restart.
	reopened, err := Open(NewFileBackend(path), "http://localhost:3000")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !reopened.LoggedIn() {
		t.Fatal("session should survive a restart")
	}
	if reopened.Token() != "access-1" {
		t.Fatalf("token not persisted, got %q", reopened.Token())
	}
	user, ok := reopened.User()
	if !ok || user.Email != "student@example.com" {
		t.Fatalf("user not persisted: %+v", user)
	}
}

func TestLogoutClearsAuthButKeepsBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := Open(NewFileBackend(path), "http://localhost:3000")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.SetAuth(testUser(), "access-1", "refresh-1"); err != nil {
		t.Fatalf("SetAuth failed: %v", err)
	}
	if err := store.SetBaseURL("http://10.0.0.5:3000"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	if err := store.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	reopened, err := Open(NewFileBackend(path), "http://localhost:3000")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.LoggedIn() {
		t.Fatal("restart after logout must show the unauthenticated flow")
	}
	if reopened.Token() != "" {
		t.Fatal("token must be cleared on logout")
	}
	if reopened.BaseURL() != "http://10.0.0.5:3000" {
		t.Fatalf("server config should survive logout, got %q", reopened.BaseURL())
	}
}

func TestSetBaseURLValidation(t *testing.T) {
	store, err := Open(NewFileBackend(filepath.Join(t.TempDir(), "state.json")), "http://localhost:3000")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	err = store.SetBaseURL("192.168.1.66:3000")
	var valErr *api.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.BaseURL() != "http://localhost:3000" {
		t.Fatal("rejected URL must not be applied")
	}

	if err := store.SetBaseURL("http://192.168.1.66:3000/"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	if store.BaseURL() != "http://192.168.1.66:3000" {
		t.Fatalf("trailing slash should be trimmed, got %q", store.BaseURL())
	}
}

func TestHasRole(t *testing.T) {
	user := User{Roles: []string{"teacher"}}
	if !user.HasRole(RoleTeacher) {
		t.Fatal("role comparison should be case-insensitive")
	}
	if user.HasRole(RoleStudent) {
		t.Fatal("user is not a student")
	}
}

func TestCorruptStateFileBehavesAsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	backend := NewFileBackend(path)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	state, found, err := backend.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Fatalf("corrupt file must read as fresh install, got %+v", state)
	}
}
