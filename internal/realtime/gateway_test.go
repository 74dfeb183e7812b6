package realtime

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/test"
	"Gatepass/pkg/log"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// Envelope used to decode server pushes on the test side of the socket.
type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Spins up a gin server exposing the websocket endpoint behind the mock auth
// middleware, backed by an in-memory heartbeat store.
func newGatewayTestServer(t *testing.T) (*httptest.Server, *fakeHeartbeatRepo, Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New("test")
	router := gin.New()

	registry := NewRegistry()
	table := NewTable()
	repo := newFakeHeartbeatRepo()
	service := NewService(registry, repo, table, time.Minute, logger)
	gateway := NewGateway(table, registry, service, logger)
	APIHandlers(router, gateway, test.MockAuthMiddleware(logger), logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo, registry
}

func dialGateway(t *testing.T, srv *httptest.Server, username string, role string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime/ws"
	header := http.Header{}
	header.Add("Cookie", "mode=test; user="+username+"; role="+role)
	conn, resp, dialerr := websocket.DefaultDialer.Dial(wsURL, header)
	if dialerr != nil {
		t.Fatal(dialerr)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMessage(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	data, merr := json.Marshal(payload)
	if merr != nil {
		t.Fatal(merr)
	}
	if werr := conn.WriteJSON(entity.ClientMessage{Type: msgType, Data: data}); werr != nil {
		t.Fatal(werr)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsEnvelope
	if rerr := conn.ReadJSON(&msg); rerr != nil {
		t.Fatal(rerr)
	}
	return msg
}

func errorStatus(t *testing.T, msg wsEnvelope) int {
	t.Helper()
	var payload struct {
		Status int `json:"status"`
	}
	if uerr := json.Unmarshal(msg.Data, &payload); uerr != nil {
		t.Fatal(uerr)
	}
	return payload.Status
}

func TestGatewayRejectsUnauthenticated(t *testing.T) {
	srv, _, _ := newGatewayTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/realtime/ws"

	conn, resp, dialerr := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Error(t, dialerr)
	assert.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestGatewayRejectsUnknownMessageType(t *testing.T) {
	srv, _, _ := newGatewayTestServer(t)
	conn := dialGateway(t, srv, "admin1", entity.RoleAdmin)

	sendMessage(t, conn, "definitely_not_a_thing", entity.AdminWatch{EventCode: "EVENT-1"})

	msg := readEnvelope(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, http.StatusBadRequest, errorStatus(t, msg))
}

func TestGatewayEnforcesMessageRoles(t *testing.T) {
	srv, _, _ := newGatewayTestServer(t)

	// A POC client may not claim an admin watch slot
	pocConn := dialGateway(t, srv, "poc1", entity.RolePoc)
	sendMessage(t, pocConn, MsgRegisterAdmin, entity.AdminWatch{EventCode: "EVENT-1"})
	msg := readEnvelope(t, pocConn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, http.StatusForbidden, errorStatus(t, msg))

	// And an admin client may not emit heartbeats
	adminConn := dialGateway(t, srv, "admin1", entity.RoleAdmin)
	sendMessage(t, adminConn, MsgHeartbeat, entity.Heartbeat{EventCode: "EVENT-1", PointCode: "GATE-A"})
	msg = readEnvelope(t, adminConn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, http.StatusForbidden, errorStatus(t, msg))
}

func TestGatewayRejectsMalformedPayload(t *testing.T) {
	srv, _, _ := newGatewayTestServer(t)
	conn := dialGateway(t, srv, "admin1", entity.RoleAdmin)

	// Right type, empty event code
	sendMessage(t, conn, MsgRegisterAdmin, entity.AdminWatch{})

	msg := readEnvelope(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, http.StatusBadRequest, errorStatus(t, msg))
}

func TestGatewayCheckinNotificationFlow(t *testing.T) {
	srv, _, registry := newGatewayTestServer(t)

	adminConn := dialGateway(t, srv, "admin1", entity.RoleAdmin)
	sendMessage(t, adminConn, MsgRegisterAdmin, entity.AdminWatch{EventCode: "EVENT-1"})
	assert.Eventually(t, func() bool {
		_, ok := registry.Get("EVENT-1")
		return ok
	}, time.Second, 5*time.Millisecond)

	pocConn := dialGateway(t, srv, "poc1", entity.RolePoc)
	payload := entity.CheckinPayload{
		GuestInfo:   entity.GuestInfo{GuestCode: "GUEST-1", EventCode: "EVENT-1"},
		CheckinInfo: entity.CheckinInfo{PointCode: "GATE-A", CheckinTime: time.Now().Unix(), Active: true},
	}
	sendMessage(t, pocConn, MsgNewCheckin, payload)

	// The watching admin receives the relayed check-in
	msg := readEnvelope(t, adminConn)
	assert.Equal(t, MsgNewCheckinReceived, msg.Type)
	var relayed entity.CheckinPayload
	assert.NoError(t, json.Unmarshal(msg.Data, &relayed))
	assert.Equal(t, payload, relayed)

	// And the POC sender is acknowledged
	msg = readEnvelope(t, pocConn)
	assert.Equal(t, MsgAck, msg.Type)
	var ack entity.CheckinAck
	assert.NoError(t, json.Unmarshal(msg.Data, &ack))
	assert.True(t, ack.Success)
}

func TestGatewayCheckinAckedWithoutWatcher(t *testing.T) {
	srv, _, _ := newGatewayTestServer(t)
	pocConn := dialGateway(t, srv, "poc1", entity.RolePoc)

	sendMessage(t, pocConn, MsgNewCheckin, entity.CheckinPayload{
		GuestInfo: entity.GuestInfo{GuestCode: "GUEST-1", EventCode: "EVENT-1"},
	})

	msg := readEnvelope(t, pocConn)
	assert.Equal(t, MsgAck, msg.Type)
	var ack entity.CheckinAck
	assert.NoError(t, json.Unmarshal(msg.Data, &ack))
	assert.True(t, ack.Success)
}

func TestGatewayStoresHeartbeat(t *testing.T) {
	srv, repo, _ := newGatewayTestServer(t)
	pocConn := dialGateway(t, srv, "poc1", entity.RolePoc)

	sendMessage(t, pocConn, MsgHeartbeat, entity.Heartbeat{EventCode: "EVENT-1", PointCode: "GATE-A"})

	ctx := context.Background()
	logger := log.New("test")
	assert.Eventually(t, func() bool {
		_, ok, _ := repo.GetField(ctx, logger, "EVENT-1", "GATE-A")
		return ok
	}, time.Second, 5*time.Millisecond)

	expiry, _, _ := repo.GetField(ctx, logger, "EVENT-1", "GATE-A")
	assert.Greater(t, expiry, time.Now().Unix())
}

func TestGatewayReleasesWatcherOnDisconnect(t *testing.T) {
	srv, _, registry := newGatewayTestServer(t)

	adminConn := dialGateway(t, srv, "admin1", entity.RoleAdmin)
	sendMessage(t, adminConn, MsgRegisterAdmin, entity.AdminWatch{EventCode: "EVENT-1"})
	assert.Eventually(t, func() bool {
		_, ok := registry.Get("EVENT-1")
		return ok
	}, time.Second, 5*time.Millisecond)

	adminConn.Close()

	// The read loop releases every registry entry owned by the dead connection
	assert.Eventually(t, func() bool {
		_, ok := registry.Get("EVENT-1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
