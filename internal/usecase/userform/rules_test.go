package userform

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Name:     "Leanne Graham",
		Username: "USER-Leanne Graham",
		Email:    "leanne@example.com",
		Phone:    "1234567890",
		Address:  AddressDraft{Street: "Kulas Light", City: "Gwenborough"},
	}
}

func TestValidate_ValidDraft(t *testing.T) {
	v := NewValidator()

	u, errs := v.Validate(validDraft())

	require.Nil(t, errs)
	require.NotNil(t, u)
	assert.Equal(t, "Leanne Graham", u.Name)
	assert.Equal(t, "USER-Leanne Graham", u.Username)
	assert.Equal(t, "1234567890", u.Phone)
	assert.Equal(t, "Kulas Light", u.Address.Street)
	assert.Equal(t, "Gwenborough", u.Address.City)
	assert.Zero(t, u.ID)
}

func TestValidate_KeepsValuesUnchanged(t *testing.T) {
	v := NewValidator()
	d := validDraft()
	d.Phone = "(123) 456-7890"
	d.Address.Suite = "Apt. 556"
	d.Website = "hildegard.org"

	u, errs := v.Validate(d)

	require.Nil(t, errs)
	assert.Equal(t, "(123) 456-7890", u.Phone)
	assert.Equal(t, "Apt. 556", u.Address.Suite)
	assert.Equal(t, "hildegard.org", u.Website)
}

func TestValidate_EmptyDraftReportsEveryField(t *testing.T) {
	v := NewValidator()

	u, errs := v.Validate(Draft{})

	assert.Nil(t, u)
	require.Len(t, errs, 6)
	assert.ElementsMatch(t,
		[]string{"name", "username", "email", "phone", "address.street", "address.city"},
		errs.Fields())
	assert.Equal(t, "Name is required", errs.Get("name"))
	assert.Equal(t, "Username is required", errs.Get("username"))
	assert.Equal(t, "Email is required", errs.Get("email"))
	assert.Equal(t, "Phone is required", errs.Get("phone"))
	assert.Equal(t, "Street is required", errs.Get("address.street"))
	assert.Equal(t, "City is required", errs.Get("address.city"))
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Draft)
		field   string
		message string
	}{
		{"name too short", func(d *Draft) { d.Name = "Al" }, "name", "Name must be at least 3 characters"},
		{"name missing", func(d *Draft) { d.Name = "" }, "name", "Name is required"},
		{"username missing", func(d *Draft) { d.Username = "" }, "username", "Username is required"},
		{"email missing", func(d *Draft) { d.Email = "" }, "email", "Email is required"},
		{"email malformed", func(d *Draft) { d.Email = "not-an-email" }, "email", "Email is not valid"},
		{"phone missing", func(d *Draft) { d.Phone = "" }, "phone", "Phone is required"},
		{"phone too short", func(d *Draft) { d.Phone = "12345" }, "phone", "Phone number must be exactly 10 digits"},
		{"phone too long", func(d *Draft) { d.Phone = "1-770-736-8031 x56442" }, "phone", "Phone number must be exactly 10 digits"},
		{"phone letters only", func(d *Draft) { d.Phone = "abcdefghij" }, "phone", "Phone number must be exactly 10 digits"},
		{"street missing", func(d *Draft) { d.Address.Street = "" }, "address.street", "Street is required"},
		{"city missing", func(d *Draft) { d.Address.City = "" }, "address.city", "City is required"},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			u, errs := v.Validate(d)

			assert.Nil(t, u)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestValidate_NestedAndTopLevelFailuresAreIndependent(t *testing.T) {
	v := NewValidator()
	d := validDraft()
	d.Email = "bad"
	d.Address.City = ""
	d.Address.Street = ""

	_, errs := v.Validate(d)

	require.Len(t, errs, 3)
	assert.Equal(t, "Email is not valid", errs.Get("email"))
	assert.Equal(t, "Street is required", errs.Get("address.street"))
	assert.Equal(t, "City is required", errs.Get("address.city"))
	assert.Contains(t, errs.Error(), "City is required")
}

func TestIsValidPhone(t *testing.T) {
	accepted := []string{"0000000000", "1234567890", "9876543210", "123-456-7890", "(123) 456 7890"}
	for _, p := range accepted {
		assert.True(t, IsValidPhone(p), p)
	}

	rejected := []string{"", "123456789", "12345678901", "phone", "+1 123 456 7890"}
	for _, p := range rejected {
		assert.False(t, IsValidPhone(p), p)
	}
}

func TestDisplayPhone(t *testing.T) {
	assert.Equal(t, "1770736803", DisplayPhone("1-770-736-8031 x56442"))
	assert.Equal(t, "0106926593", DisplayPhone("010-692-6593"))
	assert.Equal(t, "", DisplayPhone("n/a"))
}

func TestMustRegister_PanicsOnRejectedRule(t *testing.T) {
	v := validator.New()

	assert.PanicsWithValue(t, `userform: register "" rule: function Key cannot be empty`, func() {
		mustRegister(v, "", func(validator.FieldLevel) bool { return true })
	})
	assert.NotPanics(t, func() { NewValidator() })
}
