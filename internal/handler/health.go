package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// HealthHandler returns a basic liveness endpoint.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// PeerHealthHandler returns a liveness endpoint that also probes a peer
// service, best-effort: the probe result is informational and never makes
// this service unhealthy.
func PeerHealthHandler(peerURL string) http.HandlerFunc {
	client := &http.Client{Timeout: 5 * time.Second}
	return func(w http.ResponseWriter, r *http.Request) {
		peer := "unreachable"
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, peerURL, nil)
		if err == nil {
			if resp, doErr := client.Do(req); doErr == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				peer = strconv.Itoa(resp.StatusCode)
			}
		}
		RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"detector": peer,
		})
	}
}
