// Websocket gateway of Gatepass, terminating client connections and dispatching
// realtime messages between POC clients and the watching admin.

package realtime

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
	// Outbound message buffer per connection.
	sendBufferSize = 256
)

// client is one live websocket connection with its authenticated identity.
// send is never closed, done signals the write pump that the connection is gone.
type client struct {
	id       string
	username string
	role     string
	conn     *websocket.Conn
	send     chan entity.ServerMessage
	done     chan struct{}
}

// Gateway owns the upgrade path and the per-connection read/write pumps.
// Inbound messages are authorized against the messageRoles table before being
// handed to the service layer; outbound pushes go through the connection table.
type Gateway struct {
	table    *Table
	registry Registry
	service  Service
	upgrader websocket.Upgrader
	logger   log.Logger
}

// Returns a new Gateway wired to the shared connection table, admin registry and realtime service.
func NewGateway(table *Table, registry Registry, service Service, logger log.Logger) *Gateway {
	return &Gateway{
		table:    table,
		registry: registry,
		service:  service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin is already handled by the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated request to a websocket connection
// and runs its read loop. The auth middleware has already rejected requests
// without a valid bearer credential, so identity is taken from the context.
func (g *Gateway) HandleConnection(gctx *gin.Context) {
	username, ok := gctx.Value("Username").(string)
	if !ok {
		// Type assertion error
		g.logger.WithCtx(gctx).Error().Msg("Type assertion error in HandleConnection")
		gctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	role, ok := gctx.Value("Role").(string)
	if !ok {
		// Type assertion error
		gctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	conn, uperr := g.upgrader.Upgrade(gctx.Writer, gctx.Request, nil)
	if uperr != nil {
		// Upgrade already wrote the HTTP error response
		g.logger.WithCtx(gctx).Error().Err(uperr).Msg("Websocket upgrade failed")
		return
	}

	c := &client{
		id:       xid.New().String(),
		username: username,
		role:     role,
		conn:     conn,
		send:     make(chan entity.ServerMessage, sendBufferSize),
		done:     make(chan struct{}),
	}
	g.table.add(c)
	g.logger.WithCtx(gctx).Info().Msgf("Websocket connection %s opened for %s (%s)", c.id, c.username, c.role)

	// Connection id doubles as the correlation id for everything this socket does
	ctx := context.WithValue(context.Background(), "CorrelationID", c.id)
	go g.writePump(ctx, c)
	g.readLoop(ctx, c)
}

// readLoop pumps inbound messages from the websocket connection into the dispatcher.
// On exit the connection is dropped from the table and any admin registry
// entries owned by it are released, so a dead admin doesn't keep receiving slot.
func (g *Gateway) readLoop(ctx context.Context, c *client) {
	defer func() {
		g.table.remove(c.id)
		g.registry.Release(c.id)
		c.conn.Close()
		g.logger.WithCtx(ctx).Info().Msgf("Websocket connection %s closed for %s", c.id, c.username)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		g.logger.WithCtx(ctx).Error().Err(err).Msg("Couldn't set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg entity.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				g.logger.WithCtx(ctx).Error().Err(err).Msg("Unexpected websocket close")
			}
			return
		}
		g.dispatch(ctx, c, msg)
	}
}

// dispatch authorizes an inbound message against the role table and routes it
// to the matching service operation. Authorization failures are answered with
// an explicit error message, never silently dropped.
func (g *Gateway) dispatch(ctx context.Context, c *client, msg entity.ClientMessage) {
	requiredRole, known := messageRoles[msg.Type]
	if !known {
		g.pushError(c, errors.BadRequest("Unknown message type"))
		return
	}
	if c.role != requiredRole {
		g.logger.WithCtx(ctx).Warn().Msgf("Connection %s (%s) not allowed to send %s", c.id, c.role, msg.Type)
		g.pushError(c, errors.Forbidden(""))
		return
	}

	switch msg.Type {
	case MsgRegisterAdmin:
		var payload entity.AdminWatch
		if uerr := json.Unmarshal(msg.Data, &payload); uerr != nil || payload.EventCode == "" {
			g.pushError(c, errors.BadRequest(""))
			return
		}
		g.service.RegisterAdmin(ctx, c.id, payload.EventCode)

	case MsgUnregisterAdmin:
		var payload entity.AdminWatch
		if uerr := json.Unmarshal(msg.Data, &payload); uerr != nil || payload.EventCode == "" {
			g.pushError(c, errors.BadRequest(""))
			return
		}
		g.service.UnregisterAdmin(ctx, payload.EventCode)

	case MsgHeartbeat:
		var payload entity.Heartbeat
		if uerr := json.Unmarshal(msg.Data, &payload); uerr != nil || payload.EventCode == "" || payload.PointCode == "" {
			g.pushError(c, errors.BadRequest(""))
			return
		}
		// Store errors are transient, the effect is observed through sweep broadcasts
		g.service.Heartbeat(ctx, payload)

	case MsgNewCheckin:
		var payload entity.CheckinPayload
		if uerr := json.Unmarshal(msg.Data, &payload); uerr != nil || payload.GuestInfo.EventCode == "" {
			g.pushError(c, errors.BadRequest(""))
			return
		}
		ack := g.service.NewCheckin(ctx, payload)
		g.table.Push(c.id, entity.ServerMessage{Type: MsgAck, Data: ack})

	case MsgConnectToAdmin, MsgDisconnectFromAdmin:
		var payload entity.PocPresence
		if uerr := json.Unmarshal(msg.Data, &payload); uerr != nil || payload.EventCode == "" {
			g.pushError(c, errors.BadRequest(""))
			return
		}
		g.service.PocPresence(ctx, payload, msg.Type == MsgConnectToAdmin)
	}
}

// pushError answers the sender with a typed rejection.
func (g *Gateway) pushError(c *client, err errors.ErrorResponse) {
	g.table.Push(c.id, entity.ServerMessage{Type: MsgError, Data: err})
}

// writePump pumps outbound messages from the send channel onto the websocket
// connection and keeps the peer alive with periodic pings.
func (g *Gateway) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				g.logger.WithCtx(ctx).Error().Err(err).Msgf("Couldn't write to connection %s", c.id)
				return
			}
		case <-c.done:
			// Table dropped the connection, say goodbye
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
