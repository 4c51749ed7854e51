package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginProtection provides combined IP rate limiting and account lockout
// protection for login endpoints.
type LoginProtection struct {
	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
	ipRate     rate.Limit
	ipBurst    int

	attemptsMu     sync.RWMutex
	failedAttempts map[string]*loginAttempt

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
}

// loginAttempt tracks failed login attempts for an account.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before account lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is the lockout time after too many failures (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	lp := &LoginProtection{
		limiters:          make(map[string]*rate.Limiter),
		ipRate:            rate.Limit(cfg.IPRateLimit),
		ipBurst:           cfg.IPBurst,
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}

	go lp.cleanup()

	return lp
}

// Middleware returns a middleware that rate-limits requests per client IP.
// Over-limit requests receive 429 Too Many Requests.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !lp.limiterFor(ip).Allow() {
				slog.Warn("login rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Too many requests, please slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAccountLocked reports whether the account is currently locked out and,
// if so, the remaining lockout duration.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()

	attempt, ok := lp.failedAttempts[email]
	if !ok {
		return false, 0
	}
	remaining := time.Until(attempt.lockedUntil)
	if remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt records a failed login for the account. Returns true
// with the lockout duration when the failure count reaches the limit.
func (lp *LoginProtection) RecordFailedAttempt(email string) (locked bool, duration time.Duration) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, ok := lp.failedAttempts[email]
	if !ok || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt = &loginAttempt{firstFailed: now}
		lp.failedAttempts[email] = attempt
	}

	attempt.count++
	if attempt.count >= lp.maxFailedAttempts {
		attempt.lockedUntil = now.Add(lp.lockoutDuration)
		return true, lp.lockoutDuration
	}
	return false, 0
}

// RecordSuccessfulLogin clears failed attempt tracking for the account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	delete(lp.failedAttempts, email)
}

// maxIPLimiters caps the limiter map; past this the map is reset wholesale.
const maxIPLimiters = 10000

// cleanup periodically removes stale entries.
func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		lp.cleanupStaleEntries()
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	lp.limitersMu.Lock()
	if len(lp.limiters) > maxIPLimiters {
		lp.limiters = make(map[string]*rate.Limiter)
		slog.Info("cleared IP rate limiters due to size")
	}
	lp.limitersMu.Unlock()

	now := time.Now()
	lp.attemptsMu.Lock()
	for email, attempt := range lp.failedAttempts {
		// Remove once the lockout has expired and the attempt window has passed
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, email)
		}
	}
	lp.attemptsMu.Unlock()
}

// limiterFor returns the rate limiter for the given IP, creating it if needed.
func (lp *LoginProtection) limiterFor(ip string) *rate.Limiter {
	lp.limitersMu.Lock()
	defer lp.limitersMu.Unlock()

	limiter, ok := lp.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(lp.ipRate, lp.ipBurst)
		lp.limiters[ip] = limiter
	}
	return limiter
}

// clientIP extracts the client IP from the request, ignoring the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
