package userform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "user-crud-console/internal/domain/user"
)

func existingUser() domain.User {
	return domain.User{
		ID:       7,
		Name:     "Kurtis Weissnat",
		Username: "Elwyn.Skiles",
		Email:    "telly.hoeger@billy.biz",
		Phone:    "2100676132",
		Address:  domain.Address{Street: "Rex Trail", Suite: "Suite 280", City: "Howemouth", Zipcode: "58804-1099"},
		Website:  "elvis.io",
	}
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		name    string
		mode    domain.Mode
		input   string
		current string
		want    string
	}{
		{"create empty", domain.ModeCreate, "", "USER-old", ""},
		{"create two chars", domain.ModeCreate, "Al", "USER-Ali", ""},
		{"create three chars", domain.ModeCreate, "Ann", "", "USER-Ann"},
		{"create long", domain.ModeCreate, "Leanne Graham", "", "USER-Leanne Graham"},
		{"create multibyte counts runes", domain.ModeCreate, "Zoë", "", "USER-Zoë"},
		{"edit keeps current", domain.ModeEdit, "Completely New", "Bret", "Bret"},
		{"edit short name keeps current", domain.ModeEdit, "A", "Bret", "Bret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUsername(tt.mode, tt.input, tt.current))
		})
	}
}

func TestEngine_CreateModeDerivesUsernameLive(t *testing.T) {
	e := New(nil)
	e.Open(nil)

	require.True(t, e.IsOpen())
	assert.Equal(t, domain.ModeCreate, e.Mode())
	assert.Equal(t, Draft{}, e.Draft())

	for _, step := range []struct{ name, username string }{
		{"B", ""},
		{"Bo", ""},
		{"Bob", "USER-Bob"},
		{"Bobby", "USER-Bobby"},
		{"Bo", ""},
	} {
		require.NoError(t, e.SetField("name", step.name))
		assert.Equal(t, step.username, e.Draft().Username, "name=%q", step.name)
	}
}

func TestEngine_EditModeNeverRecomputesUsername(t *testing.T) {
	e := New(nil)
	u := existingUser()
	e.Open(&u)

	assert.Equal(t, domain.ModeEdit, e.Mode())
	assert.Equal(t, int64(7), e.EditingID())
	assert.Equal(t, FromUser(u), e.Draft())

	for _, name := range []string{"", "Ku", "Kurt", "Someone Else"} {
		require.NoError(t, e.SetField("name", name))
		assert.Equal(t, "Elwyn.Skiles", e.Draft().Username)
	}
}

func TestEngine_UsernameIsReadOnly(t *testing.T) {
	e := New(nil)
	e.Open(nil)

	err := e.SetField("username", "hacker")
	require.Error(t, err)
	assert.Empty(t, e.Draft().Username)
}

func TestEngine_SetFieldRequiresOpenForm(t *testing.T) {
	e := New(nil)
	assert.ErrorIs(t, e.SetField("name", "Ann"), ErrNotOpen)

	e.Open(nil)
	assert.Error(t, e.SetField("nickname", "x"))
}

func TestEngine_ReopenDiscardsUnsavedEdits(t *testing.T) {
	e := New(nil)
	first := existingUser()
	e.Open(&first)
	require.NoError(t, e.SetField("email", "changed@example.com"))
	firstSession := e.Session()

	second := existingUser()
	second.ID = 8
	second.Name = "Nicholas Runolfsdottir V"
	second.Email = "sherwood@rosamond.me"
	e.Open(&second)

	assert.NotEqual(t, firstSession, e.Session())
	assert.Equal(t, int64(8), e.EditingID())
	assert.Equal(t, "sherwood@rosamond.me", e.Draft().Email)

	e.Open(nil)
	assert.Equal(t, domain.ModeCreate, e.Mode())
	assert.Equal(t, int64(0), e.EditingID())
	assert.Equal(t, Draft{}, e.Draft())
}

func TestEngine_ValidateCreate(t *testing.T) {
	e := New(nil)
	e.Open(nil)

	_, errs := e.Validate()
	require.Len(t, errs, 6)
	assert.Equal(t, errs, e.Errors())

	require.NoError(t, e.SetField("name", "Bob"))
	require.NoError(t, e.SetField("email", "bob@example.com"))
	require.NoError(t, e.SetField("phone", "5551234567"))
	require.NoError(t, e.SetField("address.street", "Main St"))
	require.NoError(t, e.SetField("address.city", "Springfield"))

	u, errs := e.Validate()
	require.Nil(t, errs)
	assert.Nil(t, e.Errors())
	assert.Equal(t, "USER-Bob", u.Username)
	assert.Zero(t, u.ID)
}

func TestEngine_ValidateEditCarriesID(t *testing.T) {
	e := New(nil)
	u := existingUser()
	e.Open(&u)
	require.NoError(t, e.SetField("address.city", "Lebsackbury"))

	got, errs := e.Validate()
	require.Nil(t, errs)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Lebsackbury", got.Address.City)
	assert.Equal(t, "Elwyn.Skiles", got.Username)
	assert.Equal(t, "Suite 280", got.Address.Suite)
}

func TestEngine_CloseResets(t *testing.T) {
	e := New(nil)
	e.Open(nil)
	require.NoError(t, e.SetField("name", "Bob"))
	_, _ = e.Validate()

	e.Close()

	assert.False(t, e.IsOpen())
	assert.Equal(t, Draft{}, e.Draft())
	assert.Nil(t, e.Errors())
}
