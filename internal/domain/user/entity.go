package user

// Address holds the postal part of a user record.
type Address struct {
	Street  string `json:"street"`            // Street is the street line (required)
	Suite   string `json:"suite,omitempty"`   // Suite is carried through verbatim
	City    string `json:"city"`              // City is the city name (required)
	Zipcode string `json:"zipcode,omitempty"` // Zipcode is carried through verbatim
}

// User represents one managed user record as exchanged with the remote API.
type User struct {
	ID       int64   `json:"id,omitempty"` // ID is assigned by the server; zero before create settles
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
	Website  string  `json:"website,omitempty"`
}

// Mode tells whether a form is creating a new record or editing an existing one.
type Mode int

const (
	// ModeCreate is used when the form was opened without a seed record.
	ModeCreate Mode = iota
	// ModeEdit is used when the form was seeded from an existing record.
	ModeEdit
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}
