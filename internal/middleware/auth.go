// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyIdentity    ContextKey = "identity"
	ContextKeyRequestPath ContextKey = "request_path"
)

// Session keys for the identity record copied into the session at login.
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "user_username"
	SessionKeyEmail    = "user_email"
	SessionKeyRole     = "user_role"
)

// Flash session keys. A flash is delivered exactly once: the renderer pops
// it on the next rendered page.
const (
	SessionKeyFlash     = "flash"
	SessionKeyFlashType = "flash_type"
)

// RoleAdmin is the admin user role.
const RoleAdmin = "admin"

// Identity is the record copied into the session at login time. It is a
// snapshot: later profile or role edits do not propagate to live sessions
// until the user logs in again.
type Identity struct {
	ID       int64
	Username string
	Email    string
	Role     string
}

// IsAdmin returns true if the identity carries the admin role.
func (id *Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// PutIdentity stores the identity record in the current session.
func PutIdentity(ctx context.Context, sm *scs.SessionManager, id Identity) {
	sm.Put(ctx, SessionKeyUserID, id.ID)
	sm.Put(ctx, SessionKeyUsername, id.Username)
	sm.Put(ctx, SessionKeyEmail, id.Email)
	sm.Put(ctx, SessionKeyRole, id.Role)
}

// IdentityFromSession reads the identity record from the current session.
// Returns nil for anonymous visitors.
func IdentityFromSession(ctx context.Context, sm *scs.SessionManager) *Identity {
	userID := sm.GetInt64(ctx, SessionKeyUserID)
	if userID == 0 {
		return nil
	}
	return &Identity{
		ID:       userID,
		Username: sm.GetString(ctx, SessionKeyUsername),
		Email:    sm.GetString(ctx, SessionKeyEmail),
		Role:     sm.GetString(ctx, SessionKeyRole),
	}
}

// LoadIdentity creates middleware that copies the session's identity record
// into the request context. It never queries the database: the session holds
// a full identity snapshot taken at login.
func LoadIdentity(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := IdentityFromSession(r.Context(), sm); id != nil {
				ctx := context.WithValue(r.Context(), ContextKeyIdentity, id)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity retrieves the current identity from the request context.
// Returns nil for anonymous visitors.
func GetIdentity(r *http.Request) *Identity {
	id, ok := r.Context().Value(ContextKeyIdentity).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// GetUserID returns the current identity's ID from context, or 0 if anonymous.
// Safe to use in logging where a zero-value is acceptable.
func GetUserID(r *http.Request) int64 {
	if id := GetIdentity(r); id != nil {
		return id.ID
	}
	return 0
}

// RequireUser creates middleware that requires an authenticated session.
// Anonymous visitors are redirected to /login with an error flash.
func RequireUser(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetIdentity(r) == nil {
				sm.Put(r.Context(), SessionKeyFlash, "Please login to continue")
				sm.Put(r.Context(), SessionKeyFlashType, "error")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware that requires an authenticated admin
// session. Anyone else is redirected to /admin/login, no flash attached.
// The role checked is the one copied into the session at login; a later
// demotion does not revoke live admin sessions.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r)
			if id == nil || !id.IsAdmin() {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestPath creates middleware that stores the request path in the context
// so it stays readable after the request has left chi's routing layer.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
