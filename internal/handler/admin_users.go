// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bhanuanumula/typely-project/internal/auth"
	"github.com/bhanuanumula/typely-project/internal/render"
	"github.com/bhanuanumula/typely-project/internal/store"
)

// AdminResetPassword is the fixed password that admin reset sets. A known
// default rather than a generated token is an intended convenience of this
// app.
const AdminResetPassword = "password123"

// AdminUserHandler handles admin user management routes.
type AdminUserHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(db *sql.DB, renderer *render.Renderer) *AdminUserHandler {
	return &AdminUserHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// List renders the paginated user list.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	total, err := h.queries.CountUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count users", "error", err)
		return
	}

	users, err := h.queries.ListUsers(r.Context(), store.ListUsersParams{
		Limit:  adminPerPage,
		Offset: int64(page-1) * adminPerPage,
	})
	if err != nil {
		logAndInternalError(w, "failed to list users", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Users",
		Data: map[string]any{
			"Users":      users,
			"Pagination": BuildAdminPagination(page, total, adminPerPage, RouteAdminUsers),
		},
	}
	if err := h.renderer.Render(w, r, "admin/users", data); err != nil {
		logAndInternalError(w, "failed to render users page", "error", err)
	}
}

// Delete removes a user. Admin accounts cannot be deleted this way; the
// request is rejected with a 403.
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		logAndInternalError(w, "failed to get user", "error", err, "user_id", id)
		return
	}

	if user.IsAdmin() {
		http.Error(w, "Cannot delete an admin account", http.StatusForbidden)
		return
	}

	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		logAndInternalError(w, "failed to delete user", "error", err, "user_id", id)
		return
	}

	slog.Info("user deleted by admin", "user_id", id, "username", user.Username)
	flashSuccess(w, r, h.renderer, RouteAdminUsers, "User deleted")
}

// Promote sets a user's role to admin. No guard against promoting anyone.
func (h *AdminUserHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, RoleAdmin, "User promoted to admin")
}

// Demote sets a user's role to user. There is no self-demotion guard and no
// last-admin guard.
func (h *AdminUserHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, RoleUser, "User demoted")
}

func (h *AdminUserHandler) setRole(w http.ResponseWriter, r *http.Request, role, message string) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	if err := h.queries.UpdateUserRole(r.Context(), store.UpdateUserRoleParams{
		Role:      role,
		UpdatedAt: time.Now(),
		ID:        id,
	}); err != nil {
		logAndInternalError(w, "failed to update user role", "error", err, "user_id", id)
		return
	}

	slog.Info("user role changed", "user_id", id, "role", role)
	flashSuccess(w, r, h.renderer, RouteAdminUsers, message)
}

// ResetPassword unconditionally sets the user's password to the fixed
// default.
func (h *AdminUserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(AdminResetPassword)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
		ID:           id,
	}); err != nil {
		logAndInternalError(w, "failed to reset password", "error", err, "user_id", id)
		return
	}

	slog.Warn("password reset by admin", "user_id", id)
	flashSuccess(w, r, h.renderer, RouteAdminUsers, "Password reset to the default")
}
