// Websocket message kinds exchanged between Gatepass clients and the realtime gateway.

package realtime

import "Gatepass/internal/entity"

// Client -> server message kinds.
const (
	MsgRegisterAdmin       = "register_admin"
	MsgUnregisterAdmin     = "unregister_admin"
	MsgHeartbeat           = "heartbeat"
	MsgNewCheckin          = "new_checkin"
	MsgConnectToAdmin      = "connect_to_admin"
	MsgDisconnectFromAdmin = "disconnect_from_admin"
)

// Server -> client message kinds.
const (
	MsgNewCheckinReceived = "new_checkin_received"
	MsgPocConnected       = "poc_connected"
	MsgPocDisconnected    = "poc_disconnected"
	MsgPocStatusUpdate    = "poc_status_update"
	MsgAck                = "ack"
	MsgError              = "error"
)

// messageRoles is the authorization table consulted by the gateway before
// dispatching an inbound message to its handler. Admin messages manage the
// watcher registration, POC messages report liveness and check-ins.
var messageRoles = map[string]string{
	MsgRegisterAdmin:       entity.RoleAdmin,
	MsgUnregisterAdmin:     entity.RoleAdmin,
	MsgHeartbeat:           entity.RolePoc,
	MsgNewCheckin:          entity.RolePoc,
	MsgConnectToAdmin:      entity.RolePoc,
	MsgDisconnectFromAdmin: entity.RolePoc,
}
