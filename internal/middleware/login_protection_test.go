package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

func TestLoginProtection_AccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "victim@example.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account locked before any failed attempts")
	}

	// Two failures keep the account usable
	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d attempts", i+1)
		}
	}

	// The third failure trips the lockout
	locked, d := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked after reaching max failed attempts")
	}
	if d <= 0 {
		t.Errorf("lockout duration = %v, want > 0", d)
	}

	if locked, _ := lp.IsAccountLocked(email); !locked {
		t.Error("IsAccountLocked reports unlocked during lockout")
	}
}

func TestLoginProtection_SuccessClearsFailures(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "user@example.com"
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	// Counter reset: two more failures must not lock
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Fatal("locked after counter should have been reset")
	}
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Fatal("locked one attempt early")
	}
}

func TestLoginProtection_LockoutIsPerAccount(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 1,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	lp.RecordFailedAttempt("a@example.com")

	if locked, _ := lp.IsAccountLocked("b@example.com"); locked {
		t.Error("unrelated account locked")
	}
}

func TestLoginProtection_MiddlewareRateLimits(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     2,
	})

	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("burst requests rejected: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", codes[2])
	}
}

func TestLoginProtection_LimiterScopedToPost(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 1,
		IPBurst:     2,
	})

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Mirror the login route wiring: only the POST carries the limiter
	r := chi.NewRouter()
	r.Get("/login", ok)
	r.With(lp.Middleware()).Post("/login", ok)

	send := func(method string) int {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	// Repeated form loads are never throttled
	for i := 0; i < 10; i++ {
		if code := send(http.MethodGet); code != http.StatusOK {
			t.Fatalf("GET %d = %d, want 200", i+1, code)
		}
	}

	// Submissions past the burst are
	if code := send(http.MethodPost); code != http.StatusOK {
		t.Fatalf("first POST = %d, want 200", code)
	}
	if code := send(http.MethodPost); code != http.StatusOK {
		t.Fatalf("second POST = %d, want 200", code)
	}
	if code := send(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("third POST = %d, want 429", code)
	}
}

func TestLoginProtection_CleanupRemovesStaleEntries(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	long := 2 * time.Minute

	lp.attemptsMu.Lock()
	lp.failedAttempts["stale@example.com"] = &loginAttempt{
		count:       2,
		firstFailed: time.Now().Add(-long),
		lockedUntil: time.Now().Add(-long),
	}
	lp.failedAttempts["fresh@example.com"] = &loginAttempt{
		count:       2,
		firstFailed: time.Now(),
	}
	lp.attemptsMu.Unlock()

	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	_, staleKept := lp.failedAttempts["stale@example.com"]
	_, freshKept := lp.failedAttempts["fresh@example.com"]
	lp.attemptsMu.RUnlock()

	if staleKept {
		t.Error("expired attempt record survived cleanup")
	}
	if !freshKept {
		t.Error("recent attempt record removed by cleanup")
	}
}

func TestLoginProtection_CleanupResetsOversizedLimiterMap(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})

	lp.limitersMu.Lock()
	for i := 0; i <= maxIPLimiters; i++ {
		lp.limiters[string(rune(i))+"-ip"] = rate.NewLimiter(lp.ipRate, lp.ipBurst)
	}
	lp.limitersMu.Unlock()

	lp.cleanupStaleEntries()

	lp.limitersMu.Lock()
	n := len(lp.limiters)
	lp.limitersMu.Unlock()

	if n != 0 {
		t.Errorf("limiter map has %d entries after cleanup, want 0", n)
	}
}
