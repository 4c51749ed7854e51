// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bhanuanumula/typely-project/internal/render"
	"github.com/bhanuanumula/typely-project/internal/store"
)

// AdminBlogHandler handles admin blog management routes. All operations work
// on any blog regardless of owner.
type AdminBlogHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	sanitizer *bluemonday.Policy
}

// NewAdminBlogHandler creates a new AdminBlogHandler.
func NewAdminBlogHandler(db *sql.DB, renderer *render.Renderer) *AdminBlogHandler {
	return &AdminBlogHandler{
		queries:   store.New(db),
		renderer:  renderer,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// List renders the paginated blog list.
func (h *AdminBlogHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)

	total, err := h.queries.CountBlogs(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to count blogs", "error", err)
		return
	}

	blogs, err := h.queries.ListBlogsWithAuthorPaged(r.Context(), store.ListBlogsWithAuthorPagedParams{
		Limit:  adminPerPage,
		Offset: int64(page-1) * adminPerPage,
	})
	if err != nil {
		logAndInternalError(w, "failed to list blogs", "error", err)
		return
	}

	data := render.TemplateData{
		Title: "Blogs",
		Data: map[string]any{
			"Blogs":      blogs,
			"Pagination": BuildAdminPagination(page, total, adminPerPage, RouteAdminBlogs),
		},
	}
	if err := h.renderer.Render(w, r, "admin/blogs", data); err != nil {
		logAndInternalError(w, "failed to render blogs page", "error", err)
	}
}

// Delete removes any blog.
func (h *AdminBlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteBlog(r.Context(), id); err != nil {
		logAndInternalError(w, "failed to delete blog", "error", err, "blog_id", id)
		return
	}

	slog.Info("blog deleted by admin", "blog_id", id)
	flashSuccess(w, r, h.renderer, RouteAdminBlogs, "Blog deleted")
}

// Approve sets a blog's status to approved. Approving an already-approved
// blog is a no-op that still reports success.
func (h *AdminBlogHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	if err := h.queries.ApproveBlog(r.Context(), store.ApproveBlogParams{
		UpdatedAt: time.Now(),
		ID:        id,
	}); err != nil {
		logAndInternalError(w, "failed to approve blog", "error", err, "blog_id", id)
		return
	}

	slog.Info("blog approved", "blog_id", id)
	flashSuccess(w, r, h.renderer, RouteAdminBlogs, "Blog approved")
}

// EditForm renders the admin edit form for any blog.
func (h *AdminBlogHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	blog, err := h.queries.GetBlogByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Blog not found", http.StatusNotFound)
			return
		}
		logAndInternalError(w, "failed to get blog", "error", err, "blog_id", id)
		return
	}

	data := render.TemplateData{
		Title: "Edit Blog",
		Data:  map[string]any{"Blog": blog},
	}
	if err := h.renderer.Render(w, r, "admin/blog_form", data); err != nil {
		logAndInternalError(w, "failed to render blog form", "error", err)
	}
}

// Edit handles the admin edit form submission for any blog.
func (h *AdminBlogHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParamPlain(w, r)
	if !ok {
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, RouteAdminBlogs) {
		return
	}

	title := r.FormValue("title")
	content := r.FormValue("content")

	if title == "" || content == "" {
		flashError(w, r, h.renderer, RouteAdminBlogs, "Title and content are required")
		return
	}

	if err := h.queries.UpdateBlog(r.Context(), store.UpdateBlogParams{
		Title:     title,
		Content:   h.sanitizer.Sanitize(content),
		UpdatedAt: time.Now(),
		ID:        id,
	}); err != nil {
		logAndInternalError(w, "failed to update blog", "error", err, "blog_id", id)
		return
	}

	slog.Info("blog edited by admin", "blog_id", id)
	flashSuccess(w, r, h.renderer, RouteAdminBlogs, "Blog updated")
}
