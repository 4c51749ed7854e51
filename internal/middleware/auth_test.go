package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
)

func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	return sm
}

// withSession wraps a handler in LoadAndSave so session operations work.
func withSession(sm *scs.SessionManager, h http.Handler) http.Handler {
	return sm.LoadAndSave(h)
}

func TestIdentity_IsAdmin(t *testing.T) {
	admin := &Identity{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("admin identity not recognized")
	}

	user := &Identity{Role: "user"}
	if user.IsAdmin() {
		t.Error("user identity recognized as admin")
	}
}

func TestIdentitySessionRoundTrip(t *testing.T) {
	sm := testSessionManager()

	var got *Identity
	h := withSession(sm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		PutIdentity(r.Context(), sm, Identity{ID: 42, Username: "alice", Email: "a@example.com", Role: "user"})
		got = IdentityFromSession(r.Context(), sm)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("IdentityFromSession returned nil")
	}
	if got.ID != 42 || got.Username != "alice" || got.Role != "user" {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestIdentityFromSession_Anonymous(t *testing.T) {
	sm := testSessionManager()

	var got *Identity
	h := withSession(sm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromSession(r.Context(), sm)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != nil {
		t.Errorf("expected nil identity for anonymous session, got %+v", got)
	}
}

func TestLoadIdentity_PopulatesContext(t *testing.T) {
	sm := testSessionManager()

	var got *Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetIdentity(r)
	})

	h := withSession(sm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		PutIdentity(r.Context(), sm, Identity{ID: 7, Username: "bob", Role: RoleAdmin})
		LoadIdentity(sm)(inner).ServeHTTP(w, r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("identity missing from context")
	}
	if got.ID != 7 || !got.IsAdmin() {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	sm := testSessionManager()

	var flash, flashType string
	called := false
	probe := withSession(sm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RequireUser(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})).ServeHTTP(w, r)
		// Read back the flash the gate wrote into the session
		flash = sm.GetString(r.Context(), SessionKeyFlash)
		flashType = sm.GetString(r.Context(), SessionKeyFlashType)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	probe.ServeHTTP(rec, req)

	if called {
		t.Error("inner handler called for anonymous visitor")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if flash != "Please login to continue" || flashType != "error" {
		t.Errorf("flash = %q (%q), want login prompt error", flash, flashType)
	}
}

func TestRequireUser_PassesAuthenticated(t *testing.T) {
	sm := testSessionManager()

	called := false
	inner := RequireUser(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h := withSession(sm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyIdentity, &Identity{ID: 1, Username: "x", Role: "user"})
		inner.ServeHTTP(w, r.WithContext(ctx))
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("inner handler not called for authenticated session")
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		wantPass bool
	}{
		{"anonymous", nil, false},
		{"regular user", &Identity{ID: 1, Role: "user"}, false},
		{"admin", &Identity{ID: 1, Role: RoleAdmin}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tc.identity != nil {
				req = req.WithContext(context.WithValue(req.Context(), ContextKeyIdentity, tc.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if called != tc.wantPass {
				t.Errorf("handler called = %v, want %v", called, tc.wantPass)
			}
			if !tc.wantPass {
				if rec.Code != http.StatusSeeOther {
					t.Errorf("status = %d, want 303", rec.Code)
				}
				if loc := rec.Header().Get("Location"); loc != "/admin/login" {
					t.Errorf("Location = %q, want /admin/login", loc)
				}
			}
		})
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/view/5", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/view/5" {
		t.Errorf("request path = %q, want /view/5", got)
	}
}
