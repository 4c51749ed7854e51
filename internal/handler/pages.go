// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bhanuanumula/typely-project/internal/render"
	"github.com/bhanuanumula/typely-project/internal/store"
)

// PageHandler handles static pages and the contact endpoint.
type PageHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(db *sql.DB, renderer *render.Renderer) *PageHandler {
	return &PageHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Contact renders the contact page.
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "contact", render.TemplateData{Title: "Contact"}); err != nil {
		logAndInternalError(w, "failed to render contact page", "error", err)
	}
}

// About renders the about page.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "about", render.TemplateData{Title: "About"}); err != nil {
		logAndInternalError(w, "failed to render about page", "error", err)
	}
}

// contactRequest is the JSON body accepted by the contact endpoint.
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SubmitContact stores a contact form submission. Every outcome answers
// HTTP 200; validation and persistence failures only flip the success flag.
func (h *PageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeContactError(w, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeContactError(w, "All fields are required")
		return
	}

	if _, err := h.queries.CreateContactMessage(r.Context(), store.CreateContactMessageParams{
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: time.Now(),
	}); err != nil {
		slog.Error("failed to store contact message", "error", err)
		writeContactError(w, "Could not save your message")
		return
	}

	writeContactSuccess(w, "Message received")
}
