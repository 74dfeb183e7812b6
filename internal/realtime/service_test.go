package realtime

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// In-memory stand-in for the Redis heartbeat store.
// Event codes listed in failing simulate store connectivity trouble.
type fakeHeartbeatRepo struct {
	mu      sync.Mutex
	entries map[string]map[string]int64
	failing map[string]bool
}

func newFakeHeartbeatRepo() *fakeHeartbeatRepo {
	return &fakeHeartbeatRepo{
		entries: make(map[string]map[string]int64),
		failing: make(map[string]bool),
	}
}

func (f *fakeHeartbeatRepo) SetField(ctx context.Context, logger log.Logger, eventCode string, pointCode string, expiry int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[eventCode] {
		return errors.InternalServerError("")
	}
	if f.entries[eventCode] == nil {
		f.entries[eventCode] = make(map[string]int64)
	}
	f.entries[eventCode][pointCode] = expiry
	return nil
}

func (f *fakeHeartbeatRepo) GetField(ctx context.Context, logger log.Logger, eventCode string, pointCode string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[eventCode] {
		return 0, false, errors.InternalServerError("")
	}
	expiry, ok := f.entries[eventCode][pointCode]
	return expiry, ok, nil
}

func (f *fakeHeartbeatRepo) DeleteFields(ctx context.Context, logger log.Logger, eventCode string, pointCodes ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[eventCode] {
		return errors.InternalServerError("")
	}
	for _, pointCode := range pointCodes {
		delete(f.entries[eventCode], pointCode)
	}
	return nil
}

func (f *fakeHeartbeatRepo) ListFields(ctx context.Context, logger log.Logger, eventCode string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[eventCode] {
		return map[string]int64{}, errors.InternalServerError("")
	}
	listed := make(map[string]int64, len(f.entries[eventCode]))
	for pointCode, expiry := range f.entries[eventCode] {
		listed[pointCode] = expiry
	}
	return listed, nil
}

// Notifier stand-in recording every push per connection id.
// Only connections added through connect() accept messages.
type fakeNotifier struct {
	mu     sync.Mutex
	known  map[string]bool
	pushed map[string][]entity.ServerMessage
}

func newFakeNotifier(connIDs ...string) *fakeNotifier {
	known := make(map[string]bool)
	for _, connID := range connIDs {
		known[connID] = true
	}
	return &fakeNotifier{known: known, pushed: make(map[string][]entity.ServerMessage)}
}

func (f *fakeNotifier) Push(connID string, msg entity.ServerMessage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[connID] {
		return false
	}
	f.pushed[connID] = append(f.pushed[connID], msg)
	return true
}

func (f *fakeNotifier) messages(connID string) []entity.ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.ServerMessage{}, f.pushed[connID]...)
}

func TestHeartbeatStoresExpiryWithinWindow(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	repo := newFakeHeartbeatRepo()
	window := time.Minute
	service := NewService(NewRegistry(), repo, newFakeNotifier(), window, logger)

	before := time.Now().Add(window).Unix()
	hberr := service.Heartbeat(ctx, entity.Heartbeat{EventCode: "EVENT-1", PointCode: "GATE-A"})
	after := time.Now().Add(window).Unix()

	assert.NoError(t, hberr)
	expiry, ok, _ := repo.GetField(ctx, logger, "EVENT-1", "GATE-A")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, expiry, before)
	assert.LessOrEqual(t, expiry, after)
}

func TestHeartbeatPropagatesStoreError(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	repo := newFakeHeartbeatRepo()
	repo.failing["EVENT-1"] = true
	service := NewService(NewRegistry(), repo, newFakeNotifier(), time.Minute, logger)

	hberr := service.Heartbeat(ctx, entity.Heartbeat{EventCode: "EVENT-1", PointCode: "GATE-A"})
	assert.Error(t, hberr)
}

func TestNewCheckinAcksWithoutWatcher(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	notifier := newFakeNotifier("conn-admin")
	service := NewService(NewRegistry(), newFakeHeartbeatRepo(), notifier, time.Minute, logger)

	ack := service.NewCheckin(ctx, entity.CheckinPayload{
		GuestInfo: entity.GuestInfo{GuestCode: "GUEST-1", EventCode: "EVENT-1"},
	})

	// Sender is acknowledged even though nobody was watching
	assert.True(t, ack.Success)
	assert.Empty(t, notifier.messages("conn-admin"))
}

func TestNewCheckinNotifiesWatcher(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	registry := NewRegistry()
	registry.Set("EVENT-1", "conn-admin")
	notifier := newFakeNotifier("conn-admin")
	service := NewService(registry, newFakeHeartbeatRepo(), notifier, time.Minute, logger)

	payload := entity.CheckinPayload{
		GuestInfo:   entity.GuestInfo{GuestCode: "GUEST-1", EventCode: "EVENT-1"},
		CheckinInfo: entity.CheckinInfo{PointCode: "GATE-A", CheckinTime: time.Now().Unix(), Active: true},
	}
	ack := service.NewCheckin(ctx, payload)

	assert.True(t, ack.Success)
	pushed := notifier.messages("conn-admin")
	assert.Len(t, pushed, 1)
	assert.Equal(t, MsgNewCheckinReceived, pushed[0].Type)
	assert.Equal(t, payload, pushed[0].Data)
}

func TestNewCheckinAcksWhenDeliveryFails(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	registry := NewRegistry()
	registry.Set("EVENT-1", "conn-gone")
	// The registered watcher is unknown to the notifier, simulating a connection
	// that dropped between registration and delivery
	service := NewService(registry, newFakeHeartbeatRepo(), newFakeNotifier(), time.Minute, logger)

	ack := service.NewCheckin(ctx, entity.CheckinPayload{
		GuestInfo: entity.GuestInfo{GuestCode: "GUEST-1", EventCode: "EVENT-1"},
	})
	assert.True(t, ack.Success)
}

func TestPocPresenceRouting(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	registry := NewRegistry()
	registry.Set("EVENT-1", "conn-admin")
	notifier := newFakeNotifier("conn-admin")
	service := NewService(registry, newFakeHeartbeatRepo(), notifier, time.Minute, logger)

	presence := entity.PocPresence{EventCode: "EVENT-1", PointCode: "GATE-A"}
	service.PocPresence(ctx, presence, true)
	service.PocPresence(ctx, presence, false)

	pushed := notifier.messages("conn-admin")
	assert.Len(t, pushed, 2)
	assert.Equal(t, MsgPocConnected, pushed[0].Type)
	assert.Equal(t, MsgPocDisconnected, pushed[1].Type)
	assert.Equal(t, presence, pushed[0].Data)
}

func TestPocPresenceWithoutWatcherIsDropped(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	notifier := newFakeNotifier("conn-admin")
	service := NewService(NewRegistry(), newFakeHeartbeatRepo(), notifier, time.Minute, logger)

	service.PocPresence(ctx, entity.PocPresence{EventCode: "EVENT-1", PointCode: "GATE-A"}, true)
	assert.Empty(t, notifier.messages("conn-admin"))
}

func TestRegisterAndUnregisterAdmin(t *testing.T) {
	ctx := context.Background()
	logger := log.New("test")
	registry := NewRegistry()
	service := NewService(registry, newFakeHeartbeatRepo(), newFakeNotifier(), time.Minute, logger)

	service.RegisterAdmin(ctx, "conn-admin", "EVENT-1")
	connID, ok := registry.Get("EVENT-1")
	assert.True(t, ok)
	assert.Equal(t, "conn-admin", connID)

	service.UnregisterAdmin(ctx, "EVENT-1")
	_, ok = registry.Get("EVENT-1")
	assert.False(t, ok)
}
