package handler

import (
	"net/http"

	"github.com/boddenberg/crm-api-go/internal/service"
)

// ============================================================
// Health
// ============================================================

func healthHandler(svc *service.HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := svc.Check(r.Context())
		writeJSON(w, probeCode(ok), status)
	}
}

func readyHandler(svc *service.HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := svc.Ready(r.Context())
		writeJSON(w, probeCode(ok), status)
	}
}

func liveHandler(svc *service.HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.Live())
	}
}

func probeCode(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
