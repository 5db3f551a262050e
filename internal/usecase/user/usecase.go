package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
	apperrors "user-crud-console/pkg/errors"
	"user-crud-console/pkg/logger"
	"user-crud-console/pkg/security"
)

var errInvalidID = apperrors.NewValidationError("id", "invalid user id")

var _ Usecase = (*Service)(nil)

// Service implements the reference API's user operations.
// Like jsonplaceholder it stores whatever it is given: record validation is the
// client's job, so only ids and search queries are checked here.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// New creates a new Service backed by r.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// CreateUser stores u under a newly assigned id. Any id in u is ignored.
func (s *Service) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating user", zap.String("name", u.Name), zap.String("email", u.Email))

	u.ID = 0
	created, err := s.repo.Create(ctx, &u)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// UpdateUser replaces the user with id by u.
func (s *Service) UpdateUser(ctx context.Context, id int64, u domain.User) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log).With(zap.Int64("id", id))
	log.Info("updating user", zap.String("name", u.Name), zap.String("email", u.Email))

	if id <= 0 {
		log.Warn("update user validation failed", zap.String("reason", "invalid id"))
		return nil, errInvalidID
	}

	u.ID = id
	updated, err := s.repo.Update(ctx, &u)
	if err != nil {
		s.logRepoError(log, "failed to update user", err)
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes the user with id.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	log := logger.WithContext(ctx, s.log).With(zap.Int64("id", id))
	log.Info("deleting user")

	if id <= 0 {
		log.Warn("delete user validation failed", zap.String("reason", "invalid id"))
		return errInvalidID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logRepoError(log, "failed to delete user", err)
		return err
	}
	return nil
}

// GetUser returns the user with id.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log).With(zap.Int64("id", id))

	if id <= 0 {
		log.Warn("get user validation failed", zap.String("reason", "invalid id"))
		return nil, errInvalidID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logRepoError(log, "failed to get user", err)
		return nil, err
	}
	return u, nil
}

// ListUsers returns every user, or those matching query when it is not empty.
func (s *Service) ListUsers(ctx context.Context, query string) ([]domain.User, error) {
	log := logger.WithContext(ctx, s.log)

	clean, err := security.ValidateSearchQuery(query)
	if err != nil {
		log.Warn("invalid search query", zap.String("query", query), zap.Error(err))
		return nil, apperrors.NewValidationError("q", err.Error())
	}

	log.Info("listing users", zap.String("query", clean))

	users, err := s.repo.List(ctx, clean)
	if err != nil {
		log.Error("failed to list users", zap.String("query", clean), zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *Service) logRepoError(log *zap.Logger, msg string, err error) {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		log.Warn(msg, zap.Error(err))
		return
	}
	log.Error(msg, zap.Error(err))
}
