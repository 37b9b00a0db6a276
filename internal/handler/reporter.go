package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/service"
)

// ReporterHandler exposes the baseline-similarity detector: profile
// management plus the /check scoring endpoint.
type ReporterHandler struct {
	svc *service.ReporterService
}

// NewReporterHandler creates a ReporterHandler.
func NewReporterHandler(svc *service.ReporterService) *ReporterHandler {
	return &ReporterHandler{svc: svc}
}

// Root handles GET /.
func (h *ReporterHandler) Root(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "automated_reporter running"})
}

type createProfileRequest struct {
	Site     string              `json:"site"`
	Username string              `json:"username"`
	Events   []domain.LoginEvent `json:"events"`
}

// CreateProfile handles POST /profiles.
func (h *ReporterHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if req.Site == "" || req.Username == "" {
		RespondError(w, domain.ErrValidation("site and username are required"))
		return
	}

	p, err := h.svc.CreateProfile(r.Context(), req.Site, req.Username, req.Events)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"created":  true,
		"site":     req.Site,
		"username": req.Username,
		"profile":  p,
	})
}

// AddEvent handles POST /profiles/{site}/{username}/events.
func (h *ReporterHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	site := chi.URLParam(r, "site")
	username := chi.URLParam(r, "username")

	var ev domain.LoginEvent
	if err := DecodeJSON(r, &ev); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	p, err := h.svc.AddEvent(r.Context(), site, username, ev)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"updated":  true,
		"site":     site,
		"username": username,
		"profile":  p,
	})
}

// ListProfiles handles GET /profiles.
func (h *ReporterHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListProfiles(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, all)
}

// GetProfile handles GET /profiles/{site}/{username}.
func (h *ReporterHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), chi.URLParam(r, "site"), chi.URLParam(r, "username"))
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// Check handles POST /check.
func (h *ReporterHandler) Check(w http.ResponseWriter, r *http.Request) {
	var ev domain.LoginEvent
	if err := DecodeJSON(r, &ev); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if ev.Site == "" || ev.Username == "" {
		RespondError(w, domain.ErrValidation("site and username are required"))
		return
	}

	result, err := h.svc.Check(r.Context(), ev)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
