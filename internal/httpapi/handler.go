// Package httpapi exposes the memory service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"recall/internal/domain"
	"recall/internal/logging"
	"recall/internal/service"
)

const maxBodyBytes = 1 << 20

// MemoryService is the subset of service.MemoryService the API needs.
type MemoryService interface {
	StoreSummary(ctx context.Context, userID string, summary domain.Mapping, docType string) (domain.Document, error)
	Remember(ctx context.Context, userID, rawInput, docType string) (service.RememberResult, error)
	Recall(ctx context.Context, userID, query string, limit int) service.MemoryReport
}

// StoreRequest is the body of POST /memory/{user_id}.
type StoreRequest struct {
	Type    string         `json:"type"`
	Summary domain.Mapping `json:"summary"`
}

// RememberRequest is the body of POST /memory/{user_id}/remember.
type RememberRequest struct {
	RawInput string `json:"raw_input"`
	Type     string `json:"type"`
}

// MemoryResponse is the body of GET /memory/{user_id}.
type MemoryResponse struct {
	Status    string             `json:"status"`
	Memory    string             `json:"memory"`
	Kind      domain.ResultKind  `json:"kind"`
	Trends    domain.TrendReport `json:"trends"`
	QueryUsed *string            `json:"query_used"`
}

// Handler serves the memory endpoints.
type Handler struct {
	svc MemoryService
	log *slog.Logger
}

// NewHandler creates a Handler around svc.
func NewHandler(svc MemoryService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, log: logging.OrDiscard(logger)}
}

// Routes returns the API mux wrapped in request-ID and access-log middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /health", h.HandleHealth())
	mux.Handle("GET /memory/{user_id}", h.HandleRecall())
	mux.Handle("POST /memory/{user_id}", h.HandleStore())
	mux.Handle("POST /memory/{user_id}/remember", h.HandleRemember())
	return RequestID(AccessLog(h.log, mux))
}

func (h *Handler) HandleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.sendJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"message": "recall API is running",
		})
	})
}

func (h *Handler) HandleRecall() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.PathValue("user_id"))
		if userID == "" {
			h.sendError(w, service.ErrInvalidUserID.Error(), http.StatusBadRequest)
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				h.sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		report := h.svc.Recall(r.Context(), userID, r.URL.Query().Get("query"), limit)
		h.sendJSON(w, http.StatusOK, MemoryResponse{
			Status:    "success",
			Memory:    report.Memory,
			Kind:      report.Result.Kind,
			Trends:    report.Trends,
			QueryUsed: report.QueryUsed,
		})
	})
}

func (h *Handler) HandleStore() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req StoreRequest
		if !h.decode(w, r, &req) {
			return
		}
		if len(req.Summary) == 0 {
			h.sendError(w, "summary must be a non-empty object", http.StatusBadRequest)
			return
		}
		doc, err := h.svc.StoreSummary(r.Context(), r.PathValue("user_id"), req.Summary, req.Type)
		if err != nil {
			h.sendServiceError(w, r, err)
			return
		}
		h.sendJSON(w, http.StatusCreated, map[string]any{"status": "success", "document": doc})
	})
}

func (h *Handler) HandleRemember() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RememberRequest
		if !h.decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.RawInput) == "" {
			h.sendError(w, "raw_input is required", http.StatusBadRequest)
			return
		}
		res, err := h.svc.Remember(r.Context(), r.PathValue("user_id"), req.RawInput, req.Type)
		if err != nil {
			h.sendServiceError(w, r, err)
			return
		}
		h.sendJSON(w, http.StatusCreated, map[string]any{
			"status":   "success",
			"summary":  res.Summary,
			"document": res.Document,
		})
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidUserID):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNoSummarizer):
		status = http.StatusServiceUnavailable
	case errors.Is(err, service.ErrOracle):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "request_id", RequestIDFrom(r.Context()), "error", err)
	}
	h.sendError(w, err.Error(), status)
}

func (h *Handler) sendError(w http.ResponseWriter, message string, status int) {
	h.sendJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encode response", "error", err)
	}
}
