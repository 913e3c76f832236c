package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/authsdk"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	Started time.Time
	Version string
	DB      Pinger
}

func (h *HealthHandler) report(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.Started).Round(time.Second).String(),
		Version: h.Version,
		Checks:  checks,
	}
}

// HandleLivez godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving. Reports uptime and version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.report("ok", nil))
}

// HandleReadyz godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the credential store. Returns 503 with status "degraded" when it cannot be reached.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		// The cause stays in the logs; probes only need to know it failed.
		slogx.FromContext(ctx).Warn("readiness check failed", "err", err)
		httpx.WriteJSON(w, http.StatusServiceUnavailable,
			h.report("degraded", &authsdk.HealthChecks{Database: "unreachable"}))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, h.report("ok", &authsdk.HealthChecks{Database: "ok"}))
}
