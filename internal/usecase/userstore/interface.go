package userstore

import (
	"context"

	domain "user-crud-console/internal/domain/user"
)

// Client is the remote user collection the store mirrors.
type Client interface {
	List(ctx context.Context) ([]domain.User, error)                          // GET /users
	Create(ctx context.Context, u domain.User) (*domain.User, error)           // POST /users
	Update(ctx context.Context, id int64, u domain.User) (*domain.User, error) // PUT /users/{id}
	// Delete returns the response status; err is non-nil only for transport failures.
	Delete(ctx context.Context, id int64) (status int, err error) // DELETE /users/{id}
}

// Severity of a user-facing notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier is the fire-and-forget sink for user-facing notifications.
type Notifier interface {
	Notify(severity Severity, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(severity Severity, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(severity Severity, message string) { f(severity, message) }

// Notification texts.
const (
	MsgFetchFailed  = "Failed to fetch users"
	MsgCreated      = "User created successfully"
	MsgCreateFailed = "Failed to create user"
	MsgUpdated      = "User updated successfully"
	MsgUpdateFailed = "Failed to update user"
	MsgDeleted      = "User deleted successfully"
	MsgDeleteFailed = "Failed to delete user"
)
