// Structure of Point-of-checkin (POC) Model in Gatepass.

package entity

// Saved in DB as poc:<event_code>:<point_code>
type Poc struct {
	Code      string `json:"point_code" redis:"point_code" valid:"required,codeformat~point_code:Point code must be 2-20 letters, digits or dashes"`
	Name      string `json:"point_name" redis:"point_name" valid:"required,type(string),stringlength(3|50)"`
	EventCode string `json:"event_code" redis:"event_code" valid:"required,codeformat~event_code:Event code must be 2-20 letters, digits or dashes"`
	Staff     string `json:"staff,omitempty" redis:"staff" valid:"-"`
	Created   int64  `json:"created,omitempty" redis:"created" valid:"-"`
}
