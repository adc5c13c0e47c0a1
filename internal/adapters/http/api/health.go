package api

import (
	"net/http"
	"time"
)

var startedAt = time.Now() //nolint:gochecknoglobals // process start for uptime

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(startedAt).Round(time.Second).String(),
	})
}
