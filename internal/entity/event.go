// Structure of Event Model in Gatepass.

package entity

// Saved in DB as event:<event_code>
type Event struct {
	Code          string `json:"event_code" redis:"event_code" valid:"required,codeformat~event_code:Event code must be 2-20 letters, digits or dashes"`
	Name          string `json:"event_name" redis:"event_name" valid:"required,type(string),stringlength(3|50)"`
	Admin         string `json:"event_admin,omitempty" redis:"event_admin" valid:"-"`
	StartsAt      int64  `json:"starts_at" redis:"starts_at" valid:"-"`
	EndsAt        int64  `json:"ends_at" redis:"ends_at" valid:"-"`
	Created       int64  `json:"created,omitempty" redis:"created" valid:"-"`
	PocsListKey   string `json:"-" redis:"pocs_list_key" valid:"-"`
	GuestsListKey string `json:"-" redis:"guests_list_key" valid:"-"`
}
