// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	deliverycontext "tasktrack/internal/delivery/context"
	"tasktrack/internal/domain/entity"
	domainerrors "tasktrack/internal/domain/errors"
	"tasktrack/internal/domain/repository"
	"tasktrack/internal/domain/service"
	"tasktrack/internal/errors"
	"tasktrack/internal/usecase"
	"tasktrack/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// timingEqualizerPassword is hashed once and compared against when a login
// names an unknown email, so both failure paths pay for a bcrypt comparison.
const timingEqualizerPassword = "tasktrack-login-timing-equalizer"

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	validator    *validation.Validator
	dummyHash    func() (string, error)
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		validator:    validation.New(),
		dummyHash: sync.OnceValues(func() (string, error) {
			return params.Hasher.Hash(timingEqualizerPassword)
		}),
		logger: params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates the account and signs a token for it.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}

	normalized := &usecase.RegisterInput{
		Name:     strings.TrimSpace(input.Name),
		Email:    entity.NormalizeEmail(input.Email),
		Password: input.Password,
	}
	if err := srv.validator.Struct(normalized); err != nil {
		return nil, err
	}
	if len(normalized.Password) > service.MaxPasswordBytes {
		return nil, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("password must be at most %d bytes", service.MaxPasswordBytes))
	}

	srv.log(ctx).Info("Starting registration", slog.String("email", normalized.Email))

	_, err := srv.userRepo.FindByEmail(ctx, normalized.Email)
	if err == nil {
		srv.log(ctx).Info("Registration rejected, email already registered", slog.String("email", normalized.Email))

		return nil, domainerrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check existing user")
	}

	passwordHash, err := srv.hasher.Hash(normalized.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate user id")
	}

	user := &entity.User{
		ID:           userID,
		Name:         normalized.Name,
		Email:        normalized.Email,
		PasswordHash: passwordHash,
	}

	// A concurrent registration can still win the race; the unique index
	// turns that into ErrUserAlreadyExists as well.
	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to create user", slog.String("email", normalized.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user")
	}

	token, err := srv.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{User: user, Token: token}, nil
}

// Login verifies the credentials. Unknown email and wrong password yield the
// same ErrInvalidCredentials.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}

	normalized := &usecase.LoginInput{
		Email:    entity.NormalizeEmail(input.Email),
		Password: input.Password,
	}
	if err := srv.validator.Struct(normalized); err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByEmail(ctx, normalized.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.burnComparison(normalized.Password)
			srv.log(ctx).Info("Login failed", slog.String("reason", "unknown email"))

			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(normalized.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login failed", slog.String("reason", "password mismatch"), slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, err := srv.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Login succeeded", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{User: user, Token: token}, nil
}

// GetProfile returns the account behind an authenticated identity.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthenticated.WithDetails("account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

func (srv *authService) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := srv.tokenService.GenerateToken(userID, srv.tokenService.TokenDuration())
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("userID", userID), slog.Any("error", err))

		return "", errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return token, nil
}

func (srv *authService) burnComparison(password string) {
	digest, err := srv.dummyHash()
	if err != nil {
		return
	}
	_ = srv.hasher.Check(password, digest)
}
