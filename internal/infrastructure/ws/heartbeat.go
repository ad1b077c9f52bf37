package ws

import (
	"context"
	"time"

	"github.com/storelink/relay/internal/infrastructure/logging"
	"github.com/storelink/relay/internal/infrastructure/metrics"
)

// HeartbeatTicker keeps long-lived connections alive by broadcasting a
// liveness event to every client, independent of room membership.
type HeartbeatTicker struct {
	rooms    *Manager
	interval time.Duration
	logger   logging.Logger
}

func NewHeartbeatTicker(rooms *Manager, interval time.Duration, logger logging.Logger) *HeartbeatTicker {
	if interval <= 0 {
		interval = 25 * time.Second
	}

	return &HeartbeatTicker{
		rooms:    rooms,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks until ctx is cancelled, which only happens at process shutdown.
func (h *HeartbeatTicker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Info(logging.WebSocket, logging.Heartbeat, "heartbeat ticker started", map[logging.ExtraKey]any{
		"interval": h.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.rooms.BroadcastAll(NewHeartbeat(now))
			metrics.HeartbeatsTotal.Inc()
		}
	}
}
