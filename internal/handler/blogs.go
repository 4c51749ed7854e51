// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bhanuanumula/typely-project/internal/middleware"
	"github.com/bhanuanumula/typely-project/internal/render"
	"github.com/bhanuanumula/typely-project/internal/store"
)

// BlogHandler handles the public blog routes.
type BlogHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	sanitizer      *bluemonday.Policy
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager) *BlogHandler {
	return &BlogHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		sanitizer:      bluemonday.UGCPolicy(),
	}
}

// Home renders the homepage with all blogs joined with author usernames,
// newest first. Pending blogs are listed alongside approved ones.
func (h *BlogHandler) Home(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.queries.ListBlogsWithAuthor(r.Context())
	if err != nil {
		slog.Error("failed to list blogs", "error", err)
		h.renderer.Error(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	data := render.TemplateData{
		Title: "Home",
		Data:  map[string]any{"Blogs": blogs},
	}
	if err := h.renderer.Render(w, r, "home", data); err != nil {
		logAndInternalError(w, "failed to render home page", "error", err)
	}
}

// Dashboard lists the blogs owned by the session identity.
func (h *BlogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	blogs, err := h.queries.ListBlogsByUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list user blogs", "error", err, "user_id", userID)
		h.renderer.Error(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	data := render.TemplateData{
		Title: "Dashboard",
		Data:  map[string]any{"Blogs": blogs},
	}
	if err := h.renderer.Render(w, r, "dashboard", data); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}

// CreateForm renders the new blog form.
func (h *BlogHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	data := render.TemplateData{
		Title: "New Blog",
		Data:  map[string]any{"Blog": nil},
	}
	if err := h.renderer.Render(w, r, "blog_form", data); err != nil {
		logAndInternalError(w, "failed to render blog form", "error", err)
	}
}

// Create handles the new blog form submission. Content is passed through an
// HTML sanitizer before it is stored.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, "/create") {
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")

	if title == "" || content == "" {
		flashError(w, r, h.renderer, "/create", "Title and content are required")
		return
	}

	now := time.Now()
	blog, err := h.queries.CreateBlog(r.Context(), store.CreateBlogParams{
		UserID:    middleware.GetUserID(r),
		Title:     title,
		Content:   h.sanitizer.Sanitize(content),
		Status:    store.BlogStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("failed to create blog", "error", err)
		flashError(w, r, h.renderer, "/create", "Error creating blog")
		return
	}

	slog.Info("blog created", "blog_id", blog.ID, "user_id", blog.UserID)
	flashSuccess(w, r, h.renderer, RouteDashboard, "Blog published")
}

// View renders a single blog with its author. Malformed ids get a 400 before
// any query runs; an absent row gets a 404.
func (h *BlogHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer)
	if !ok {
		return
	}

	blog, err := h.queries.GetBlogWithAuthor(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.renderer.Error(w, r, http.StatusNotFound, "Blog not found")
			return
		}
		slog.Error("failed to get blog", "error", err, "blog_id", id)
		h.renderer.Error(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	identity := middleware.GetIdentity(r)
	isOwner := identity != nil && identity.ID == blog.UserID

	data := render.TemplateData{
		Title: blog.Title,
		Data:  map[string]any{"Blog": blog, "IsOwner": isOwner},
	}
	if err := h.renderer.Render(w, r, "blog_view", data); err != nil {
		logAndInternalError(w, "failed to render blog view", "error", err)
	}
}

// EditForm renders the edit form for a blog the session identity owns.
// A missing row and a non-owned row both answer 403.
func (h *BlogHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer)
	if !ok {
		return
	}

	blog, ok := h.requireOwnedBlog(w, r, id)
	if !ok {
		return
	}

	data := render.TemplateData{
		Title: "Edit Blog",
		Data:  map[string]any{"Blog": blog},
	}
	if err := h.renderer.Render(w, r, "blog_form", data); err != nil {
		logAndInternalError(w, "failed to render blog form", "error", err)
	}
}

// Edit handles the edit form submission.
func (h *BlogHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer)
	if !ok {
		return
	}

	blog, ok := h.requireOwnedBlog(w, r, id)
	if !ok {
		return
	}

	editURL := fmt.Sprintf("/edit/%d", id)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")

	if title == "" || content == "" {
		flashError(w, r, h.renderer, editURL, "Title and content are required")
		return
	}

	if err := h.queries.UpdateBlog(r.Context(), store.UpdateBlogParams{
		Title:     title,
		Content:   h.sanitizer.Sanitize(content),
		UpdatedAt: time.Now(),
		ID:        blog.ID,
	}); err != nil {
		slog.Error("failed to update blog", "error", err, "blog_id", blog.ID)
		flashError(w, r, h.renderer, editURL, "Error updating blog")
		return
	}

	flashSuccess(w, r, h.renderer, RouteDashboard, "Blog updated")
}

// Delete removes a blog owned by the session identity. Ownership lives in
// the query predicate: deleting someone else's blog affects zero rows and
// still redirects as if it succeeded.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, h.renderer)
	if !ok {
		return
	}

	if err := h.queries.DeleteBlogOwned(r.Context(), store.DeleteBlogOwnedParams{
		ID:     id,
		UserID: middleware.GetUserID(r),
	}); err != nil {
		slog.Error("failed to delete blog", "error", err, "blog_id", id)
		flashError(w, r, h.renderer, RouteDashboard, "Error deleting blog")
		return
	}

	flashSuccess(w, r, h.renderer, RouteDashboard, "Blog deleted")
}

// requireOwnedBlog fetches a blog and checks the session identity owns it.
// Missing rows and non-owned rows are indistinguishable to the caller: both
// answer 403.
func (h *BlogHandler) requireOwnedBlog(w http.ResponseWriter, r *http.Request, id int64) (store.Blog, bool) {
	blog, err := h.queries.GetBlogByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("failed to get blog", "error", err, "blog_id", id)
		}
		h.renderer.Error(w, r, http.StatusForbidden, "You cannot edit this blog")
		return store.Blog{}, false
	}
	if blog.UserID != middleware.GetUserID(r) {
		h.renderer.Error(w, r, http.StatusForbidden, "You cannot edit this blog")
		return store.Blog{}, false
	}
	return blog, true
}
