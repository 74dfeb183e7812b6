// Service layer of the internal package realtime.

package realtime

import (
	"Gatepass/internal/entity"
	"Gatepass/pkg/log"
	"context"
	"time"
)

// Service layer of internal package realtime which encapsulates the gateway
// message semantics of Gatepass: admin watcher registration, POC heartbeats
// and check-in relays.
type Service interface {
	// RegisterAdmin records connID as the live watcher of eventCode, last writer wins.
	RegisterAdmin(ctx context.Context, connID string, eventCode string)
	// UnregisterAdmin drops the watcher entry of eventCode, idempotent.
	UnregisterAdmin(ctx context.Context, eventCode string)
	// Heartbeat refreshes the liveness entry of (event, point) in the heartbeat store.
	Heartbeat(ctx context.Context, hb entity.Heartbeat) error
	// NewCheckin relays a check-in to the watching admin, if any, and always acks the sender.
	NewCheckin(ctx context.Context, payload entity.CheckinPayload) entity.CheckinAck
	// PocPresence informs the watching admin, if any, that a POC came online or went away.
	PocPresence(ctx context.Context, presence entity.PocPresence, connected bool)
}

// Object of this will be passed around from main to the gateway and sweep task.
// Helps to access the service layer interface and call methods.
type service struct {
	registry Registry
	repo     Repository
	notifier Notifier
	window   time.Duration
	logger   log.Logger
}

// Helps to access the service layer interface and call methods. Service object is passed from main.
// window is the liveness window added to the current time on every heartbeat.
func NewService(registry Registry, repo Repository, notifier Notifier, window time.Duration, logger log.Logger) Service {
	return service{registry, repo, notifier, window, logger}
}

func (s service) RegisterAdmin(ctx context.Context, connID string, eventCode string) {
	s.registry.Set(eventCode, connID)
	s.logger.WithCtx(ctx).Info().Msgf("Admin connection %s registered for event %s", connID, eventCode)
}

func (s service) UnregisterAdmin(ctx context.Context, eventCode string) {
	s.registry.Remove(eventCode)
	s.logger.WithCtx(ctx).Info().Msgf("Admin watcher removed for event %s", eventCode)
}

func (s service) Heartbeat(ctx context.Context, hb entity.Heartbeat) error {
	expiry := time.Now().Add(s.window).Unix()
	dberr := s.repo.SetField(ctx, s.logger, hb.EventCode, hb.PointCode, expiry)
	if dberr != nil {
		// Store connectivity issues are transient, the next heartbeat retries naturally
		s.logger.WithCtx(ctx).Error().Err(dberr).Msgf("Couldn't store heartbeat for %s/%s", hb.EventCode, hb.PointCode)
		return dberr
	}
	return nil
}

func (s service) NewCheckin(ctx context.Context, payload entity.CheckinPayload) entity.CheckinAck {
	// Best-effort delivery: no admin watching means the notification is dropped,
	// the sender is acknowledged either way
	if connID, ok := s.registry.Get(payload.GuestInfo.EventCode); ok {
		delivered := s.notifier.Push(connID, entity.ServerMessage{Type: MsgNewCheckinReceived, Data: payload})
		if !delivered {
			s.logger.WithCtx(ctx).Warn().Msgf("Couldn't deliver check-in notification for event %s to connection %s", payload.GuestInfo.EventCode, connID)
		}
	}
	return entity.CheckinAck{Success: true, Message: "New checkin received"}
}

func (s service) PocPresence(ctx context.Context, presence entity.PocPresence, connected bool) {
	msgType := MsgPocDisconnected
	if connected {
		msgType = MsgPocConnected
	}
	// Fire-and-forget: delivered only if an admin is currently watching the event
	if connID, ok := s.registry.Get(presence.EventCode); ok {
		s.notifier.Push(connID, entity.ServerMessage{Type: msgType, Data: presence})
	}
}
