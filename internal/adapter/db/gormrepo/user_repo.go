// Package gormrepo stores users for the reference API with GORM. It runs on
// PostgreSQL in deployments and on SQLite locally and in tests.
package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-console/internal/domain/user"
	apperrors "user-crud-console/pkg/errors"
	"user-crud-console/pkg/security"
)

// UserRepo implements the user Repository interface using GORM.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
// The address is flattened into columns.
type UserSchema struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null;index"`
	Username  string `gorm:"not null"`
	Email     string `gorm:"not null"`
	Phone     string
	Street    string
	Suite     string
	City      string
	Zipcode   string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Street:   u.Address.Street,
		Suite:    u.Address.Suite,
		City:     u.Address.City,
		Zipcode:  u.Address.Zipcode,
		Website:  u.Website,
	}
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:       m.ID,
		Name:     m.Name,
		Username: m.Username,
		Email:    m.Email,
		Phone:    m.Phone,
		Address: user.Address{
			Street:  m.Street,
			Suite:   m.Suite,
			City:    m.City,
			Zipcode: m.Zipcode,
		},
		Website: m.Website,
	}
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// Create inserts a new user into the database.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// Update replaces an existing user. Unknown ids are reported as not found rather than
// inserted.
func (r *UserRepo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	res := r.db.WithContext(ctx).Model(&UserSchema{ID: u.ID}).
		Select("Name", "Username", "Email", "Phone", "Street", "Suite", "City", "Zipcode", "Website").
		Updates(&model)
	if res.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(res.Error), zap.Int64("id", u.ID))
		return nil, apperrors.NewInternalError("failed to update user", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user to update not found", zap.Int64("id", u.ID))
		return nil, notFound(u.ID)
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return r.GetByID(ctx, u.ID)
}

// Delete removes a user from the database by ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid user id")
	}

	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return apperrors.NewInternalError("failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user to delete not found", zap.Int64("id", id))
		return notFound(id)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, notFound(id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return model.toDomain(), nil
}

// List returns users in id order. A non-empty query keeps those whose name or email
// contains it, ignoring case. Callers validate query with security.ValidateSearchQuery.
func (r *UserRepo) List(ctx context.Context, query string) ([]user.User, error) {
	tx := r.db.WithContext(ctx).Order("id")
	if query != "" {
		pattern := "%" + security.SanitizeSearchString(query) + "%"
		tx = tx.Where(
			"LOWER(name) LIKE LOWER(?) ESCAPE ? OR LOWER(email) LIKE LOWER(?) ESCAPE ?",
			pattern, security.LikeEscape, pattern, security.LikeEscape,
		)
	}

	var models []UserSchema
	if err := tx.Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", query))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}

// Count returns the number of stored users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&n).Error; err != nil {
		return 0, apperrors.NewInternalError("failed to count users", err)
	}
	return n, nil
}
