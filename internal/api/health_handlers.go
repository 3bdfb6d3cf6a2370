package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// HealthOutput reports server liveness.
type HealthOutput struct {
	Body struct {
		Status        string `json:"status" doc:"Always ok when the server is up"`
		Version       string `json:"version" doc:"API version"`
		UptimeSeconds int64  `json:"uptime_seconds" doc:"Seconds since the server started"`
	}
}

// registerHealthRoutes registers the health check endpoint.
func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Health check",
		Description: "Reports server liveness, version and uptime.",
		Tags:        []string{"Health"},
	}, func(_ context.Context, _ *struct{}) (*HealthOutput, error) {
		resp := &HealthOutput{}
		resp.Body.Status = "ok"
		resp.Body.Version = Version
		resp.Body.UptimeSeconds = int64(time.Since(s.startedAt) / time.Second)
		return resp, nil
	})
}
