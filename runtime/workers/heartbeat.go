package workers

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HeartbeatWorker)(nil)

// HeartbeatWorker periodically logs relay health: how many users are
// online, how many deliveries are queued, and the process self stats.
// Diagnostics only, nothing is exported.
type HeartbeatWorker struct {
	log      *slog.Logger
	presence contract.Presence
	hub      *Hub
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, presence contract.Presence, hub *Hub, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:      log,
		presence: presence,
		hub:      hub,
		interval: interval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			w.log.Info("Relay heartbeat",
				"online", w.presence.Size(),
				"topics", w.hub.Topics(),
				"pending_deliveries", w.hub.Pending(),
				"rss_mb", rss/(1<<20),
				"cpu_percent", cpu)
		}
	}
}

// getSelfStats retrieves memory and CPU usage for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
