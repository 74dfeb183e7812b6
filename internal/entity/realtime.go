// Structures of the realtime websocket messages exchanged in Gatepass.

package entity

import "encoding/json"

// Envelope of every client -> server websocket message.
// Data is kept raw until the gateway knows which payload shape to expect.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Envelope of every server -> client websocket message.
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Payload of register_admin / unregister_admin messages.
type AdminWatch struct {
	EventCode string `json:"event_code" valid:"required,codeformat~event_code:Event code must be 2-20 letters, digits or dashes"`
}

// Payload of heartbeat messages emitted periodically by POC clients.
type Heartbeat struct {
	EventCode string `json:"event_code" valid:"required,codeformat~event_code:Event code must be 2-20 letters, digits or dashes"`
	PointCode string `json:"point_code" valid:"required,codeformat~point_code:Point code must be 2-20 letters, digits or dashes"`
}

// Payload of connect_to_admin / disconnect_from_admin messages,
// forwarded to the watching admin as poc_connected / poc_disconnected.
type PocPresence struct {
	EventCode string `json:"event_code"`
	PointCode string `json:"point_code"`
}

// Guest half of a check-in notification.
type GuestInfo struct {
	GuestCode   string `json:"guest_code"`
	EventCode   string `json:"event_code"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Check-in half of a check-in notification.
type CheckinInfo struct {
	PointCode   string `json:"point_code"`
	CheckinTime int64  `json:"checkin_time"`
	Active      bool   `json:"active"`
}

// Payload of new_checkin messages, relayed verbatim to the watching admin.
type CheckinPayload struct {
	GuestInfo   GuestInfo   `json:"guest_info"`
	CheckinInfo CheckinInfo `json:"checkin_info"`
}

// Acknowledgement returned to the POC sender of a new_checkin message.
type CheckinAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Payload of the periodic poc_status_update pushed to the watching admin.
type PocStatusUpdate struct {
	EventCode  string   `json:"event_code"`
	PointCodes []string `json:"point_codes"`
}
