// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/bhanuanumula/typely-project/internal/auth"
	"github.com/bhanuanumula/typely-project/internal/middleware"
	"github.com/bhanuanumula/typely-project/internal/render"
	"github.com/bhanuanumula/typely-project/internal/store"
)

// AdminHandler handles the admin console routes.
type AdminHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AdminHandler {
	return &AdminHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// LoginForm renders the admin login page. Admin sessions are sent to the
// console.
func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetIdentity(r); id != nil && id.IsAdmin() {
		http.Redirect(w, r, RouteAdmin, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "admin/login", render.TemplateData{Title: "Admin Login"}); err != nil {
		logAndInternalError(w, "failed to render admin login page", "error", err)
	}
}

// Login handles the admin login form. The lookup is restricted to admin
// rows, so a regular user's email behaves exactly like an unknown one.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteAdminLogin) {
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, RouteAdminLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, _ := h.loginProtection.IsAccountLocked(email); locked {
			slog.Warn("admin login attempt on locked account", "email", email)
			flashError(w, r, h.renderer, RouteAdminLogin, "Too many failed attempts. Try again later")
			return
		}
	}

	user, err := h.queries.GetAdminByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("database error during admin login", "error", err)
		}
		if h.loginProtection != nil {
			h.loginProtection.RecordFailedAttempt(email)
		}
		flashError(w, r, h.renderer, RouteAdminLogin, "Invalid credentials")
		return
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		slog.Warn("admin login failed: invalid password", "email", email)
		if h.loginProtection != nil {
			h.loginProtection.RecordFailedAttempt(email)
		}
		flashError(w, r, h.renderer, RouteAdminLogin, "Invalid credentials")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("failed to renew session token", "error", err)
	}
	middleware.PutIdentity(r.Context(), h.sessionManager, middleware.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})

	slog.Info("admin logged in", "user_id", user.ID)
	http.Redirect(w, r, RouteAdmin, http.StatusSeeOther)
}

// Dashboard renders the admin overview with every user and every blog.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	// SQLite treats a negative LIMIT as unbounded
	users, err := h.queries.ListUsers(r.Context(), store.ListUsersParams{Limit: -1, Offset: 0})
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	blogs, err := h.queries.ListBlogsWithAuthor(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list blogs", "error", err)
		return
	}

	messageCount, err := h.queries.CountContactMessages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count messages", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Admin Console",
		Data: map[string]any{
			"Users":        users,
			"Blogs":        blogs,
			"UserCount":    int64(len(users)),
			"BlogCount":    int64(len(blogs)),
			"MessageCount": messageCount,
		},
	}
	if err := h.renderer.Render(w, r, "admin/dashboard", data); err != nil {
		logAndInternalError(w, "failed to render admin dashboard", "error", err)
	}
}

// Messages lists all contact messages, newest first. Registered at two
// paths that behave identically.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	total, err := h.queries.CountContactMessages(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count messages", "error", err)
		return
	}

	messages, err := h.queries.ListContactMessages(r.Context(), store.ListContactMessagesParams{
		Limit:  adminPerPage,
		Offset: int64(page-1) * adminPerPage,
	})
	if err != nil {
		logAndInternalError(w, "failed to list messages", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Contact Messages",
		Data: map[string]any{
			"Messages":   messages,
			"Pagination": BuildAdminPagination(page, total, adminPerPage, RouteAdminMessages),
		},
	}
	if err := h.renderer.Render(w, r, "admin/messages", data); err != nil {
		logAndInternalError(w, "failed to render messages page", "error", err)
	}
}
