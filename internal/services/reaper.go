package services

import (
	"time"

	"github.com/agrimsachdeva/creativity-assesment/internal/monitoring"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"

	"go.uber.org/zap"
)

// Reaper periodically sweeps the session registry for abandoned sessions.
type Reaper struct {
	log      *zap.Logger
	registry *session.Registry
	interval time.Duration
	timeout  time.Duration
	stop     chan struct{}
}

func NewReaper(log *zap.Logger, registry *session.Registry, interval, timeout time.Duration) *Reaper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Reaper{
		log:      log,
		registry: registry,
		interval: interval,
		timeout:  timeout,
		stop:     make(chan struct{}),
	}
}

// Start runs the reaper in a goroutine.
func (r *Reaper) Start() {
	r.log.Info("Starting session reaper",
		zap.Duration("interval", r.interval),
		zap.Duration("idle_timeout", r.timeout))
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop. Sessions already reaped stay closed.
func (r *Reaper) Stop() {
	close(r.stop)
}

func (r *Reaper) sweep() {
	n := r.registry.ReapIdle(r.timeout)
	monitoring.SessionsReaped.Add(float64(n))
	if n > 0 {
		r.log.Info("Session sweep complete",
			zap.Int("reaped", n),
			zap.Int("remaining", r.registry.Len()))
	} else {
		r.log.Debug("Session sweep complete, nothing idle")
	}
}
