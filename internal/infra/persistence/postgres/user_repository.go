package postgres

import (
	"context"

	"tasktrack/internal/domain/entity"
	domainerrors "tasktrack/internal/domain/errors"
	"tasktrack/internal/domain/repository"
	"tasktrack/internal/errors"
	"tasktrack/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user. The ID and CreatedAt set by the database layer are
// written back into user.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WithDetails("email already registered")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	*user = *toUserDomain(userModel)

	return nil
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, repo.db, "id = ?", id)
}

// FindByEmail looks the user up by normalized email. It reads from the primary
// so a registration committed moments ago is never missed by a lagging replica.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, repo.db.Clauses(dbresolver.Write), "email = ?", entity.NormalizeEmail(email))
}

func (repo *userRepository) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*entity.User, error) {
	var userModel model.UserModel

	err := db.WithContext(ctx).Where(query, arg).Take(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return toUserDomain(&userModel), nil
}

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		Name:         data.Name,
		Email:        entity.NormalizeEmail(data.Email),
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
	}
}
