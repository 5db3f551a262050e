package userstore

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
	apperrors "user-crud-console/pkg/errors"
	"user-crud-console/pkg/logger"
)

// DeletePolicy decides when a settled delete removes the local record.
type DeletePolicy int

const (
	// DeleteUnconditional removes the record whenever the request completed without a
	// transport error, whatever the response status.
	DeleteUnconditional DeletePolicy = iota
	// DeleteRequireSuccess removes the record only on a 2xx response.
	DeleteRequireSuccess
)

// Option configures a Store.
type Option func(*Store)

// WithDeletePolicy sets the delete policy. The default is DeleteUnconditional.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(s *Store) { s.deletePolicy = p }
}

// Store owns the local, insertion-ordered mirror of the remote user collection.
// All mutation goes through Load, Create, Update and Delete, and only settled
// remote results are applied. It is safe for concurrent use.
//
// Every Load and every Update/Delete of an id takes a fresh number from one counter.
// A result that settles after a newer request for the same target was issued is stale:
// it is dropped and the call returns apperrors.ErrStale.
type Store struct {
	client       Client
	notifier     Notifier
	log          *zap.Logger
	deletePolicy DeletePolicy

	mu      sync.RWMutex
	users   []domain.User
	seq     uint64
	listGen uint64
	gens    map[int64]uint64
}

// New creates an empty Store.
func New(client Client, notifier Notifier, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		client:   client,
		notifier: notifier,
		log:      log,
		gens:     make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the remote list, keeping server order.
// On failure the collection is left untouched and FetchFailed is signaled.
func (s *Store) Load(ctx context.Context) error {
	ctx = logger.WithOperation(ctx, "load")
	log := logger.WithContext(ctx, s.log)

	s.mu.Lock()
	s.seq++
	s.listGen = s.seq
	gen := s.seq
	s.mu.Unlock()

	log.Info("loading users")

	users, err := s.client.List(ctx)
	if err != nil {
		if !s.currentList(gen) {
			log.Warn("discarding stale load failure", zap.Uint64("generation", gen), zap.Error(err))
			return apperrors.ErrStale
		}
		log.Error("failed to load users", zap.Error(err))
		s.notify(SeverityError, MsgFetchFailed)
		return apperrors.NewOperationError(apperrors.KindFetchFailed, err)
	}

	s.mu.Lock()
	if gen != s.listGen {
		s.mu.Unlock()
		log.Warn("discarding stale user list", zap.Uint64("generation", gen))
		return apperrors.ErrStale
	}
	s.users = dedupe(users)
	count := len(s.users)
	s.mu.Unlock()

	log.Info("users loaded", zap.Int("count", count))
	return nil
}

// Create sends a validated record to the remote API and appends the server's
// representation. Nothing is added locally when the call fails.
func (s *Store) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	ctx = logger.WithOperation(ctx, "create")
	log := logger.WithContext(ctx, s.log)

	u.ID = 0
	log.Info("creating user", zap.String("name", u.Name), zap.String("email", u.Email))

	created, err := s.client.Create(ctx, u)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		s.notify(SeverityError, MsgCreateFailed)
		return nil, apperrors.NewOperationError(apperrors.KindCreateFailed, err)
	}

	rec := *created
	s.mu.Lock()
	if rec.ID == 0 || s.indexOf(rec.ID) >= 0 {
		placeholder := s.nextLocalID()
		log.Warn("server returned a missing or duplicate id, using a local placeholder",
			zap.Int64("server_id", rec.ID), zap.Int64("local_id", placeholder))
		rec.ID = placeholder
	}
	s.users = append(s.users, rec)
	s.mu.Unlock()

	log.Info("user created", zap.Int64("id", rec.ID))
	s.notify(SeveritySuccess, MsgCreated)
	return &rec, nil
}

// Update sends a validated record for id and replaces the matching local record in
// place with the server's representation.
func (s *Store) Update(ctx context.Context, id int64, u domain.User) (*domain.User, error) {
	ctx = logger.WithOperation(ctx, "update")
	log := logger.WithContext(ctx, s.log).With(zap.Int64("id", id))

	gen := s.begin(id)
	log.Info("updating user", zap.String("name", u.Name), zap.String("email", u.Email))

	u.ID = id
	updated, err := s.client.Update(ctx, id, u)
	if err != nil {
		if !s.current(id, gen) {
			log.Warn("discarding stale update failure", zap.Error(err))
			return nil, apperrors.ErrStale
		}
		log.Error("failed to update user", zap.Error(err))
		s.notify(SeverityError, MsgUpdateFailed)
		return nil, apperrors.NewOperationError(apperrors.KindUpdateFailed, err)
	}

	rec := *updated
	rec.ID = id

	s.mu.Lock()
	if s.gens[id] != gen {
		s.mu.Unlock()
		log.Warn("discarding stale update result", zap.Uint64("generation", gen))
		return nil, apperrors.ErrStale
	}
	delete(s.gens, id)
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		log.Warn("updated user is no longer in the collection")
		s.notify(SeverityError, MsgUpdateFailed)
		return nil, apperrors.NewOperationError(apperrors.KindUpdateFailed, apperrors.ErrNotFound)
	}
	s.users[idx] = rec
	s.mu.Unlock()

	log.Info("user updated")
	s.notify(SeveritySuccess, MsgUpdated)
	return &rec, nil
}

// Delete removes the record with id once the remote call settles. Under
// DeleteUnconditional any response removes it; only a transport error keeps it.
func (s *Store) Delete(ctx context.Context, id int64) error {
	ctx = logger.WithOperation(ctx, "delete")
	log := logger.WithContext(ctx, s.log).With(zap.Int64("id", id))

	gen := s.begin(id)
	log.Info("deleting user")

	status, err := s.client.Delete(ctx, id)
	if err == nil && s.deletePolicy == DeleteRequireSuccess && !isSuccess(status) {
		err = &apperrors.StatusError{Method: http.MethodDelete, Path: "/users/" + strconv.FormatInt(id, 10), Code: status}
	}
	if err != nil {
		if !s.current(id, gen) {
			log.Warn("discarding stale delete failure", zap.Error(err))
			return apperrors.ErrStale
		}
		log.Error("failed to delete user", zap.Int("status", status), zap.Error(err))
		s.notify(SeverityError, MsgDeleteFailed)
		return apperrors.NewOperationError(apperrors.KindDeleteFailed, err)
	}
	if !isSuccess(status) {
		log.Warn("delete returned a non-success status, removing locally anyway", zap.Int("status", status))
	}

	s.mu.Lock()
	if s.gens[id] != gen {
		s.mu.Unlock()
		log.Warn("discarding stale delete result", zap.Uint64("generation", gen))
		return apperrors.ErrStale
	}
	delete(s.gens, id)
	if idx := s.indexOf(id); idx >= 0 {
		s.users = append(s.users[:idx:idx], s.users[idx+1:]...)
	}
	s.mu.Unlock()

	log.Info("user deleted", zap.Int("status", status))
	s.notify(SeveritySuccess, MsgDeleted)
	return nil
}

// Filter returns the users whose name contains term, ignoring case, in collection
// order. An empty term returns the whole collection. The result is a copy.
func (s *Store) Filter(term string) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if needle == "" || strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u)
		}
	}
	return out
}

// Users returns a copy of the whole collection.
func (s *Store) Users() []domain.User {
	return s.Filter("")
}

// Get returns the record with id.
func (s *Store) Get(id int64) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.users[idx], true
	}
	return domain.User{}, false
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *Store) begin(id int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.gens[id] = s.seq
	return s.seq
}

func (s *Store) currentList(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listGen == gen
}

func (s *Store) current(id int64, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[id] != gen {
		return false
	}
	delete(s.gens, id)
	return true
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int64) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

// nextLocalID must be called with mu held.
func (s *Store) nextLocalID() int64 {
	var maxID int64
	for _, u := range s.users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}

func (s *Store) notify(sev Severity, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(sev, msg)
	}
}

// dedupe keeps the first record for each id so the collection's keys stay unique.
func dedupe(users []domain.User) []domain.User {
	seen := make(map[int64]struct{}, len(users))
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
