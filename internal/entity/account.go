// Structure of Account Model in Gatepass.

package entity

// Roles an account can hold in Gatepass.
// Admins watch live event dashboards, POC staff run check-in points.
const (
	RoleAdmin = "admin"
	RolePoc   = "poc"
)

// Saved in DB as account:<username>
type Account struct {
	Username string `json:"username" redis:"username" valid:"required,type(string),printableascii,stringlength(5|20),nospace~username:No spaces allowed here"`
	FullName string `json:"full_name,omitempty" redis:"full_name" valid:"type(string),stringlength(5|30),ascii,optional"`
	Password string `json:"password,omitempty" redis:"password" valid:"required,type(string),minstringlength(5)"`
	Role     string `json:"role" redis:"role" valid:"required,in(admin|poc)~role:Role must be either admin or poc"`
}

// Query params received in account search requests.
type AccountSearch struct {
	Username string `json:"username" valid:"required,printableascii"`
	Cursor   int    `json:"cursor" valid:"-"`
}
