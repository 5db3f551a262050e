package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	domain "user-crud-console/internal/domain/user"
	"user-crud-console/internal/usecase/screen"
	"user-crud-console/internal/usecase/userform"
)

type column struct {
	title string
	width int
	value func(u domain.User) string
}

var columns = []column{
	{"ID", 4, func(u domain.User) string { return fmt.Sprint(u.ID) }},
	{"Name", 24, func(u domain.User) string { return u.Name }},
	{"Username", 20, func(u domain.User) string { return u.Username }},
	{"Email", 26, func(u domain.User) string { return u.Email }},
	{"Phone", userform.PhoneDigits, func(u domain.User) string { return userform.DisplayPhone(u.Phone) }},
	{"Street", 18, func(u domain.User) string { return u.Address.Street }},
	{"City", 16, func(u domain.User) string { return u.Address.City }},
}

const cellSeparator = " | "

// cell fits s into exactly width terminal columns.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// writeRow keeps trailing padding so every row has the same separators.
func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, cellSeparator))
}

// RenderTable writes users as a fixed-width table, one row per user.
func RenderTable(w io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found")
		return
	}

	header := make([]string, len(columns))
	rule := make([]string, len(columns))
	for i, c := range columns {
		header[i] = cell(c.title, c.width)
		rule[i] = strings.Repeat("-", c.width)
	}
	writeRow(w, header)
	writeRow(w, rule)

	row := make([]string, len(columns))
	for _, u := range users {
		for i, c := range columns {
			row[i] = cell(c.value(u), c.width)
		}
		writeRow(w, row)
	}
}

type formField struct {
	path  string
	label string
	value func(d userform.Draft) string
}

var formFields = []formField{
	{"name", "Name", func(d userform.Draft) string { return d.Name }},
	{"username", "Username", func(d userform.Draft) string { return d.Username }},
	{"email", "Email", func(d userform.Draft) string { return d.Email }},
	{"phone", "Phone", func(d userform.Draft) string { return d.Phone }},
	{"address.street", "Street", func(d userform.Draft) string { return d.Address.Street }},
	{"address.suite", "Suite", func(d userform.Draft) string { return d.Address.Suite }},
	{"address.city", "City", func(d userform.Draft) string { return d.Address.City }},
	{"address.zipcode", "Zipcode", func(d userform.Draft) string { return d.Address.Zipcode }},
	{"website", "Website", func(d userform.Draft) string { return d.Website }},
}

const labelWidth = 16

// RenderForm writes the open form with any validation message next to its field.
func RenderForm(w io.Writer, v screen.View) {
	if !v.Form.Open {
		fmt.Fprintln(w, "No form is open. Use 'add' or 'edit <id>'.")
		return
	}

	if v.Form.Mode == domain.ModeEdit {
		fmt.Fprintf(w, "Edit user #%d\n", v.Form.EditingID)
	} else {
		fmt.Fprintln(w, "Add user")
	}

	for _, f := range formFields {
		label := f.label
		if f.path == "username" {
			label += " (auto)"
		}
		line := fmt.Sprintf("  %s %s", runewidth.FillRight(label+":", labelWidth), f.value(v.Form.Draft))
		if msg := v.Errors.Get(f.path); msg != "" {
			line += "  ! " + msg
		}
		fmt.Fprintln(w, line)
	}
}

// FieldPaths lists the paths accepted by the set command.
func FieldPaths() []string {
	paths := make([]string, 0, len(formFields))
	for _, f := range formFields {
		if f.path != "username" {
			paths = append(paths, f.path)
		}
	}
	return paths
}
