// Structure of Guest Model in Gatepass.

package entity

// Saved in DB as guest:<event_code>:<guest_code>
// Check-in fields stay zero-valued until the guest is checked in at a point.
type Guest struct {
	Code        string `json:"guest_code" redis:"guest_code" valid:"required,codeformat~guest_code:Guest code must be 2-20 letters, digits or dashes"`
	EventCode   string `json:"event_code" redis:"event_code" valid:"required,codeformat~event_code:Event code must be 2-20 letters, digits or dashes"`
	Description string `json:"description,omitempty" redis:"description" valid:"type(string),stringlength(0|200),optional"`
	ImageURL    string `json:"image_url,omitempty" redis:"image_url" valid:"url,optional"`
	PointCode   string `json:"point_code,omitempty" redis:"point_code" valid:"-"`
	CheckinTime int64  `json:"checkin_time,omitempty" redis:"checkin_time" valid:"-"`
	Active      bool   `json:"active" redis:"active" valid:"-"`
}

// Payload received on guest check-in requests from POC staff.
type GuestCheckin struct {
	GuestCode string `json:"guest_code" valid:"required,codeformat~guest_code:Guest code must be 2-20 letters, digits or dashes"`
	EventCode string `json:"event_code" valid:"required,codeformat~event_code:Event code must be 2-20 letters, digits or dashes"`
	PointCode string `json:"point_code" valid:"required,codeformat~point_code:Point code must be 2-20 letters, digits or dashes"`
}
