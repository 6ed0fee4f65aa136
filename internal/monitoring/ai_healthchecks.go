// Package monitoring tracks the availability of the external
// model-serving endpoints so degraded inference shows up in logs before
// it shows up in user-facing results.
package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/echomind/internal/clients"
)

const HEALTHCHECK_TIMER = 15

// MonitorEndpointHealth pings one model-serving endpoint on a fixed
// interval and publishes the result through the shared flag. An empty
// endpoint means the capability was never configured; nothing to watch.
func MonitorEndpointHealth(ctx context.Context, name, endpoint string, healthy *atomic.Bool) {
	if endpoint == "" {
		return
	}

	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := clients.GetModelServerClient().Ping(ctx, endpoint)
			healthy.Store(err == nil)
			if err != nil {
				slog.Warn("[HealthCheck] Model endpoint is unhealthy",
					slog.String("endpoint_name", name),
					slog.String("error", err.Error()))
			}
		}
	}
}
