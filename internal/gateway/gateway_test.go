package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"trainingportal/internal/api"
	"trainingportal/internal/config"
	"trainingportal/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newUpstream fakes the training-center backend for the routes the gateway
// touches during these tests.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeData := func(w http.ResponseWriter, data any) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": data})
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "wrong email or password"})
			return
		}
		writeData(w, map[string]any{
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
			"user": map[string]any{
				"id":       "stu-1",
				"email":    body["email"],
				"fullname": "Alice Nguyen",
				"roles":    []string{"student"},
			},
		})
	})
	mux.HandleFunc("GET /enrollments/schedule", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []any{})
	})
	mux.HandleFunc("GET /courses", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []any{})
	})
	mux.HandleFunc("GET /form-requests", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []map[string]any{{"id": "req-1", "title": "Leave", "status": "pending"}})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "boom"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGateway(t *testing.T, upstreamURL string) (*Gateway, *session.Store) {
	t.Helper()
	backend := session.NewFileBackend(filepath.Join(t.TempDir(), "state.json"))
	store, err := session.Open(backend, upstreamURL)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cfg := config.App{RateLimitPerMin: 1000}
	g := New(cfg, config.DefaultContent(), store, backend, api.New(store))
	return g, store
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginFlow(t *testing.T) {
	upstream := newUpstream(t)
	g, store := newGateway(t, upstream.URL)
	r := g.Router()

	w := do(t, r, http.MethodPost, "/login", `{"email":"","password":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty credentials: want 400, got %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/login", `{"email":"alice@hrc.edu.vn","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: want 401, got %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/login", `{"email":"alice@hrc.edu.vn","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: want 200, got %d: %s", w.Code, w.Body.String())
	}
	if !store.LoggedIn() {
		t.Fatal("store must be logged in after a successful login")
	}
	user, _ := store.User()
	if user.Fullname != "Alice Nguyen" {
		t.Fatalf("unexpected stored user: %+v", user)
	}
}

func TestRoutesRequireLogin(t *testing.T) {
	upstream := newUpstream(t)
	g, _ := newGateway(t, upstream.URL)
	r := g.Router()

	for _, path := range []string{"/home", "/schedule", "/courses", "/me"} {
		if w := do(t, r, http.MethodGet, path, ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without login: want 401, got %d", path, w.Code)
		}
	}
	if w := do(t, r, http.MethodGet, "/about", ""); w.Code != http.StatusOK {
		t.Fatalf("/about is public, got %d", w.Code)
	}
}

func TestRoleGating(t *testing.T) {
	upstream := newUpstream(t)
	g, store := newGateway(t, upstream.URL)
	r := g.Router()

	login(t, r, store)

	w := do(t, r, http.MethodPost, "/sessions/s1/start", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("student on teacher route: want 403, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/requests", "")
	if w.Code != http.StatusOK {
		t.Fatalf("student requests: want 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSetServer(t *testing.T) {
	upstream := newUpstream(t)
	g, store := newGateway(t, upstream.URL)
	r := g.Router()

	login(t, r, store)

	w := do(t, r, http.MethodPut, "/settings/server", `{"baseUrl":"192.168.1.66:3000"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("scheme-less URL: want 400, got %d", w.Code)
	}

	w = do(t, r, http.MethodPut, "/settings/server", `{"baseUrl":"http://10.0.0.2:3000/"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set server: want 200, got %d", w.Code)
	}
	if store.BaseURL() != "http://10.0.0.2:3000" {
		t.Fatalf("base URL not stored trimmed: %q", store.BaseURL())
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	upstream := newUpstream(t)
	g, store := newGateway(t, upstream.URL)
	r := g.Router()

	login(t, r, store)

	// The fake upstream has no /users handler, so the profile update hits the
	// catch-all 500.
	w := do(t, r, http.MethodPut, "/me", `{"fullname":"Alice N"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("upstream 500 must surface: got %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "boom" {
		t.Fatalf("upstream message must surface, got %q", body["error"])
	}
}

func TestLogoutKeepsServer(t *testing.T) {
	upstream := newUpstream(t)
	g, store := newGateway(t, upstream.URL)
	r := g.Router()

	login(t, r, store)
	if err := store.SetBaseURL("http://10.0.0.9:3000"); err != nil {
		t.Fatalf("set base url: %v", err)
	}

	w := do(t, r, http.MethodPost, "/logout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout: want 200, got %d", w.Code)
	}
	if store.LoggedIn() {
		t.Fatal("store must be logged out")
	}
	if store.BaseURL() != "http://10.0.0.9:3000" {
		t.Fatalf("server choice must survive logout, got %q", store.BaseURL())
	}
}

func login(t *testing.T, r *gin.Engine, store *session.Store) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/login", `{"email":"alice@hrc.edu.vn","password":"secret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	if !store.LoggedIn() {
		t.Fatal("login did not persist")
	}
}
