// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// contactResponse is the JSON body returned by the contact endpoint. The
// endpoint always answers HTTP 200; the success flag carries the outcome.
type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeContactSuccess(w http.ResponseWriter, message string) {
	writeContactJSON(w, contactResponse{Success: true, Message: message})
}

func writeContactError(w http.ResponseWriter, errMsg string) {
	writeContactJSON(w, contactResponse{Success: false, Error: errMsg})
}

func writeContactJSON(w http.ResponseWriter, resp contactResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode contact response", "error", err)
	}
}
