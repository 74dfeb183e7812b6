// Liveness sweep of the Gatepass realtime gateway: reconciles the heartbeat
// store against wall-clock time and broadcasts the online point set per event.

package realtime

import (
	"Gatepass/internal/entity"
	"Gatepass/pkg/log"
	"context"
	"sort"
	"time"
)

// Sweep is the recurring task evicting expired heartbeat entries and pushing
// poc_status_update messages to registered admin watchers. A point that stops
// heartbeating disappears from the admin view within one sweep cycle after its
// expiry, bounded staleness rather than instantaneous detection.
type Sweep struct {
	interval time.Duration
	registry Registry
	repo     Repository
	notifier Notifier
	logger   log.Logger
	stop     chan bool
}

// Returns a new Sweep ticking at the given interval.
func NewSweep(interval time.Duration, registry Registry, repo Repository, notifier Notifier, logger log.Logger) *Sweep {
	return &Sweep{
		interval: interval,
		registry: registry,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		stop:     make(chan bool),
	}
}

// Run drives the sweep ticker until Stop is called or ctx is cancelled.
// Launch in a goroutine for non-blockage.
func (s *Sweep) Run(ctx context.Context) {
	s.logger.WithCtx(ctx).Info().Msgf("Launching liveness sweep every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-s.stop:
			ticker.Stop()
			s.logger.WithCtx(ctx).Info().Msg("Successfully stopped liveness sweep")
			return
		case <-ctx.Done():
			ticker.Stop()
			return
		}
	}
}

// Stop signals Run to exit before server shutdown.
func (s *Sweep) Stop() {
	close(s.stop)
}

// SweepOnce runs a single reconciliation cycle over every watched event.
// Store failures are isolated per event code so one event's trouble doesn't
// block status updates for the others.
func (s *Sweep) SweepOnce(ctx context.Context) {
	now := time.Now().Unix()
	for _, eventCode := range s.registry.Events() {
		entries, dberr := s.repo.ListFields(ctx, s.logger, eventCode)
		if dberr != nil {
			// Transient store failure, the next cycle retries naturally
			s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't list heartbeats for event %s", eventCode)
			continue
		}

		online := make([]string, 0, len(entries))
		expired := []string{}
		for pointCode, expiry := range entries {
			if expiry <= now {
				expired = append(expired, pointCode)
			} else {
				online = append(online, pointCode)
			}
		}

		if len(expired) > 0 {
			if dberr := s.repo.DeleteFields(ctx, s.logger, eventCode, expired...); dberr != nil {
				// Eviction failure is not fatal, entries stay expired and retried next cycle
				s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't evict expired heartbeats for event %s", eventCode)
			}
		}

		// Stable ordering keeps the admin view from jittering between cycles
		sort.Strings(online)
		if connID, ok := s.registry.Get(eventCode); ok {
			s.notifier.Push(connID, entity.ServerMessage{
				Type: MsgPocStatusUpdate,
				Data: entity.PocStatusUpdate{EventCode: eventCode, PointCodes: online},
			})
		}
	}
}
