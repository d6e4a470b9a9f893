package domain

// ============================================================
// Health API Responses
// ============================================================

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status      string         `json:"status"` // healthy, unhealthy
	Timestamp   string         `json:"timestamp"`
	Uptime      float64        `json:"uptime"`
	Environment string         `json:"environment"`
	Version     string         `json:"version"`
	Database    DatabaseHealth `json:"database"`
	Error       string         `json:"error,omitempty"`
}

// DatabaseHealth reports the result of the storage ping.
type DatabaseHealth struct {
	Status         string `json:"status"` // connected, disconnected
	ResponseTimeMs int64  `json:"response_time_ms"`
}

// ProbeStatus is returned by the readiness and liveness probes.
type ProbeStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}
