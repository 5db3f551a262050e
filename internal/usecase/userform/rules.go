package userform

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "user-crud-console/internal/domain/user"
	apperrors "user-crud-console/pkg/errors"
)

// PhoneDigits is the number of digits a phone number must resolve to.
const PhoneDigits = 10

// Draft is the editable, possibly invalid form of a user record.
// Field names in validation output follow the json tags, nested with dots.
type Draft struct {
	Name     string       `json:"name" validate:"required,min=3"`
	Username string       `json:"username" validate:"required"`
	Email    string       `json:"email" validate:"required,email"`
	Phone    string       `json:"phone" validate:"required,digits10"`
	Address  AddressDraft `json:"address"`
	Website  string       `json:"website"`
}

// AddressDraft is the nested address part of a Draft.
type AddressDraft struct {
	Street  string `json:"street" validate:"required"`
	Suite   string `json:"suite"`
	City    string `json:"city" validate:"required"`
	Zipcode string `json:"zipcode"`
}

// messages maps field path and failing tag to the text shown next to the field.
var messages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
		"min":      "Name must be at least 3 characters",
	},
	"username": {
		"required": "Username is required",
	},
	"email": {
		"required": "Email is required",
		"email":    "Email is not valid",
	},
	"phone": {
		"required": "Phone is required",
		"digits10": "Phone number must be exactly 10 digits",
	},
	"address.street": {
		"required": "Street is required",
	},
	"address.city": {
		"required": "City is required",
	},
}

// Validator applies the user schema to drafts.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the schema's custom rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "digits10", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})

	return &Validator{validate: v}
}

// mustRegister adds a custom rule and panics if the validator rejects it.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("userform: register %q rule: %v", tag, err))
	}
}

// Validate checks every rule against d and returns the record it describes, or one
// error per failing field. Validation never stops at the first failure.
func (v *Validator) Validate(d Draft) (*domain.User, apperrors.ValidationErrors) {
	err := v.validate.Struct(d)
	if err == nil {
		u := d.toUser(0)
		return &u, nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, apperrors.ValidationErrors{apperrors.NewValidationError("", err.Error())}
	}

	out := make(apperrors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fieldPath(fe.Namespace())
		out = append(out, apperrors.NewValidationError(path, message(path, fe)))
	}
	return nil, out
}

// fieldPath turns "Draft.address.street" into "address.street".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(path string, fe validator.FieldError) string {
	if m, ok := messages[path][fe.Tag()]; ok {
		return m
	}
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		return path + " must be at least " + fe.Param() + " characters"
	default:
		return path + " is invalid"
	}
}

// DigitsOnly strips every non-digit character from s.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// IsValidPhone reports whether s resolves to exactly PhoneDigits digits.
func IsValidPhone(s string) bool {
	return len(DigitsOnly(s)) == PhoneDigits
}

// DisplayPhone renders a phone number as its digits, capped at PhoneDigits.
func DisplayPhone(s string) string {
	d := DigitsOnly(s)
	if len(d) > PhoneDigits {
		return d[:PhoneDigits]
	}
	return d
}
