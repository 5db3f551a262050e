package userform

import (
	"errors"
	"fmt"
	"unicode/utf8"

	domain "user-crud-console/internal/domain/user"
	apperrors "user-crud-console/pkg/errors"
)

// UsernamePrefix is prepended to the name to form a new record's username.
const UsernamePrefix = "USER-"

// ErrNotOpen is returned by operations that need an open form.
var ErrNotOpen = errors.New("no form is open")

// minDerivableName is the shortest name that yields a username.
const minDerivableName = 3

// DeriveUsername returns the username a form should show after its name changed.
// In create mode it is UsernamePrefix+name once name has at least three characters and
// empty otherwise. In edit mode the current username is kept as is.
func DeriveUsername(mode domain.Mode, name, current string) string {
	if mode == domain.ModeEdit {
		return current
	}
	if utf8.RuneCountInString(name) < minDerivableName {
		return ""
	}
	return UsernamePrefix + name
}

// FromUser seeds a draft from an existing record.
func FromUser(u domain.User) Draft {
	return Draft{
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Address: AddressDraft{
			Street:  u.Address.Street,
			Suite:   u.Address.Suite,
			City:    u.Address.City,
			Zipcode: u.Address.Zipcode,
		},
		Website: u.Website,
	}
}

func (d Draft) toUser(id int64) domain.User {
	return domain.User{
		ID:       id,
		Name:     d.Name,
		Username: d.Username,
		Email:    d.Email,
		Phone:    d.Phone,
		Address: domain.Address{
			Street:  d.Address.Street,
			Suite:   d.Address.Suite,
			City:    d.Address.City,
			Zipcode: d.Address.Zipcode,
		},
		Website: d.Website,
	}
}

// Fields lists the paths accepted by Engine.SetField, in display order.
var Fields = []string{
	"name", "email", "phone",
	"address.street", "address.suite", "address.city", "address.zipcode",
	"website",
}

// Engine holds the draft of the single record being created or edited.
// It is not safe for concurrent use; the screen controller serializes access.
type Engine struct {
	validator *Validator

	open    bool
	mode    domain.Mode
	seedID  int64
	session uint64
	draft   Draft
	errs    apperrors.ValidationErrors
}

// New creates a closed Engine.
func New(v *Validator) *Engine {
	if v == nil {
		v = NewValidator()
	}
	return &Engine{validator: v}
}

// Open starts a form session. A nil seed opens create mode with empty fields; otherwise
// edit mode is seeded from seed. Opening while a form is already open discards the
// previous draft.
func (e *Engine) Open(seed *domain.User) {
	e.open = true
	e.session++
	e.errs = nil

	if seed == nil {
		e.mode = domain.ModeCreate
		e.seedID = 0
		e.draft = Draft{}
		return
	}

	e.mode = domain.ModeEdit
	e.seedID = seed.ID
	e.draft = FromUser(*seed)
}

// Close discards the draft and any recorded errors.
func (e *Engine) Close() {
	e.open = false
	e.session++
	e.seedID = 0
	e.draft = Draft{}
	e.errs = nil
}

// IsOpen reports whether a form session is active.
func (e *Engine) IsOpen() bool { return e.open }

// Mode returns the mode of the current session.
func (e *Engine) Mode() domain.Mode { return e.mode }

// EditingID returns the id of the record being edited, or 0 in create mode.
func (e *Engine) EditingID() int64 { return e.seedID }

// Session identifies the current Open call; it changes on every Open and Close.
func (e *Engine) Session() uint64 { return e.session }

// Draft returns a copy of the current draft.
func (e *Engine) Draft() Draft { return e.draft }

// Errors returns the errors recorded by the last Validate call.
func (e *Engine) Errors() apperrors.ValidationErrors { return e.errs }

// SetName updates the name and re-derives the username.
func (e *Engine) SetName(name string) {
	e.draft.Name = name
	e.draft.Username = DeriveUsername(e.mode, name, e.draft.Username)
}

// SetField assigns value to the field at path. The username is read-only.
func (e *Engine) SetField(path, value string) error {
	if !e.open {
		return ErrNotOpen
	}

	switch path {
	case "name":
		e.SetName(value)
	case "email":
		e.draft.Email = value
	case "phone":
		e.draft.Phone = value
	case "address.street":
		e.draft.Address.Street = value
	case "address.suite":
		e.draft.Address.Suite = value
	case "address.city":
		e.draft.Address.City = value
	case "address.zipcode":
		e.draft.Address.Zipcode = value
	case "website":
		e.draft.Website = value
	case "username":
		return errors.New("username is read-only")
	default:
		return fmt.Errorf("unknown field %q", path)
	}
	return nil
}

// Validate checks the current draft. On success it returns the record to send, carrying
// the edited record's id in edit mode. Failures are also kept for Errors.
func (e *Engine) Validate() (*domain.User, apperrors.ValidationErrors) {
	u, errs := e.validator.Validate(e.draft)
	e.errs = errs
	if errs != nil {
		return nil, errs
	}
	u.ID = e.seedID
	return u, nil
}
