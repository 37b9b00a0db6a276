package handler

import (
	"net/http"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/service"
)

// DetectorHandler exposes the session-rule detector: the login-event intake
// plus the session and alert query/administration endpoints.
type DetectorHandler struct {
	svc *service.DetectorService
}

// NewDetectorHandler creates a DetectorHandler.
func NewDetectorHandler(svc *service.DetectorService) *DetectorHandler {
	return &DetectorHandler{svc: svc}
}

// LoginEvent handles POST /api/login_event. Responds with the raised alert,
// or {"result":"ok"} for a clean event. Locked accounts get 403 before any
// scoring runs.
func (h *DetectorHandler) LoginEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.SessionEvent
	if err := DecodeJSON(r, &ev); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if ev.Username == "" {
		RespondError(w, domain.ErrValidation("username is required"))
		return
	}

	alert, err := h.svc.HandleLogin(r.Context(), ev)
	if err != nil {
		RespondError(w, err)
		return
	}
	if alert != nil {
		RespondJSON(w, http.StatusOK, alert)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}

// Unlock handles POST /api/unlock_account?username=...
func (h *DetectorHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		RespondError(w, domain.ErrValidation("username is required"))
		return
	}
	if err := h.svc.Unlock(r.Context(), username); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"result": "Account unlocked"})
}

// ReAuthenticate handles POST /api/re_authenticate?username=...
// Simulates the challenge; a real deployment would trigger an OTP flow.
func (h *DetectorHandler) ReAuthenticate(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		RespondError(w, domain.ErrValidation("username is required"))
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{
		"result":   "Re-authentication required",
		"username": username,
	})
}

// Sessions handles GET /api/sessions.
func (h *DetectorHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.Sessions(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sessions)
}

// Alerts handles GET /api/alerts.
func (h *DetectorHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.Alerts(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, alerts)
}
