package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
	"user-crud-console/internal/usecase/userform"
	apperrors "user-crud-console/pkg/errors"
	"user-crud-console/pkg/logger"
)

// UserStore is the part of userstore.Store the controller drives.
type UserStore interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	Update(ctx context.Context, id int64, u domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	Filter(term string) []domain.User
	Get(id int64) (domain.User, bool)
}

// FormView is the presentation state of the form.
type FormView struct {
	Open      bool
	Mode      domain.Mode
	EditingID int64
	Draft     userform.Draft
}

// View is everything the presentation layer needs to render the screen.
type View struct {
	VisibleUsers []domain.User
	SearchTerm   string
	Form         FormView
	Errors       apperrors.ValidationErrors
}

// Controller turns screen intents into form and store operations.
// Form state is guarded by a mutex; remote calls run without holding it, so
// intents may be issued from several goroutines.
type Controller struct {
	store UserStore
	form  *userform.Engine
	log   *zap.Logger

	mu   sync.Mutex
	term string
}

// New creates a Controller with a closed form and an empty search term.
func New(store UserStore, form *userform.Engine, log *zap.Logger) *Controller {
	if form == nil {
		form = userform.New(nil)
	}
	return &Controller{store: store, form: form, log: log}
}

// Mount loads the initial list. A failure has already been notified by the store
// and leaves the list empty.
func (c *Controller) Mount(ctx context.Context) error {
	return c.store.Load(ctx)
}

// Reload fetches the list again.
func (c *Controller) Reload(ctx context.Context) error {
	return c.store.Load(ctx)
}

// Add opens an empty form in create mode.
func (c *Controller) Add() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Open(nil)
}

// Edit opens the form in edit mode seeded from the stored record with id.
func (c *Controller) Edit(id int64) error {
	u, ok := c.store.Get(id)
	if !ok {
		return fmt.Errorf("edit user %d: %w", id, apperrors.ErrNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Open(&u)
	return nil
}

// SetField changes one field of the open draft.
func (c *Controller) SetField(path, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.SetField(path, value)
}

// Cancel closes the form and discards the draft.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Close()
}

// Submit validates the draft and, when valid, creates or updates the record.
//
// A validation failure returns apperrors.ValidationErrors, keeps the form open and makes
// no remote call. A remote failure keeps the form open with the draft intact. On success
// the form closes, unless it was reopened or cancelled while the call was in flight.
func (c *Controller) Submit(ctx context.Context) (*domain.User, error) {
	c.mu.Lock()
	if !c.form.IsOpen() {
		c.mu.Unlock()
		return nil, userform.ErrNotOpen
	}
	u, errs := c.form.Validate()
	if errs != nil {
		c.mu.Unlock()
		return nil, errs
	}
	mode := c.form.Mode()
	session := c.form.Session()
	c.mu.Unlock()

	ctx = logger.WithOperation(ctx, "submit")
	log := logger.WithContext(ctx, c.log).With(zap.Stringer("mode", mode))

	var (
		saved *domain.User
		err   error
	)
	if mode == domain.ModeEdit {
		saved, err = c.store.Update(ctx, u.ID, *u)
	} else {
		saved, err = c.store.Create(ctx, *u)
	}

	if err != nil && !errors.Is(err, apperrors.ErrStale) {
		log.Debug("submit failed, keeping form open", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.Session() == session {
		c.form.Close()
	}
	return saved, err
}

// Delete removes the record with id. No confirmation is asked for. If the form is
// editing that record and the delete succeeds, the form is closed.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.IsOpen() && c.form.Mode() == domain.ModeEdit && c.form.EditingID() == id {
		c.form.Close()
	}
	return nil
}

// Search sets the term used to filter the visible list.
func (c *Controller) Search(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
}

// View returns the current screen state. The visible list is recomputed on every call.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		VisibleUsers: c.store.Filter(c.term),
		SearchTerm:   c.term,
		Form: FormView{
			Open:      c.form.IsOpen(),
			Mode:      c.form.Mode(),
			EditingID: c.form.EditingID(),
			Draft:     c.form.Draft(),
		},
		Errors: c.form.Errors(),
	}
}
