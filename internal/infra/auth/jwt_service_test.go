package auth

import (
	"strings"
	"testing"
	"time"

	"tasktrack/config"
	"tasktrack/internal/domain/service"
	"tasktrack/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

func newTestJWTService(t *testing.T, now time.Time) *jwtService {
	t.Helper()

	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Access: testSecret},
	}

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	impl, ok := svc.(*jwtService)
	require.True(t, ok)
	impl.now = func() time.Time { return now }

	return impl
}

func TestJWTService_GenerateAndValidateToken(t *testing.T) {
	now := time.Now()
	svc := newTestJWTService(t, now)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestJWTService_ExpiredAfterTTL(t *testing.T) {
	issuedAt := time.Now()
	svc := newTestJWTService(t, issuedAt)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, svc.TokenDuration())
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(svc.TokenDuration() - time.Minute) }
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(svc.TokenDuration() + time.Second) }
	claims, err := svc.ValidateToken(token)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrTokenExpired))
	assert.False(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newTestJWTService(t, time.Now())

	claims, err := svc.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_TamperedPayload(t *testing.T) {
	svc := newTestJWTService(t, time.Now())

	tokenA, err := svc.GenerateToken(uuid.New(), time.Hour)
	require.NoError(t, err)
	tokenB, err := svc.GenerateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	partsA := strings.Split(tokenA, ".")
	partsB := strings.Split(tokenB, ".")
	require.Len(t, partsA, 3)
	require.Len(t, partsB, 3)

	forged := partsA[0] + "." + partsB[1] + "." + partsA[2]
	claims, err := svc.ValidateToken(forged)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t, time.Now())
	userID := uuid.New()

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc := newTestJWTService(t, time.Now())
	userID := uuid.New()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &service.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_RequiresExpiry(t *testing.T) {
	svc := newTestJWTService(t, time.Now())
	userID := uuid.New()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &service.Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_EmptySecret(t *testing.T) {
	jwtService, err := NewJWTService(&config.Config{})
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt secret must be provided")
}

func TestJWTService_TokenDuration(t *testing.T) {
	svc, err := NewJWTService(&config.Config{
		SecretKey: config.SecretKeyConfig{Access: testSecret},
	})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, svc.TokenDuration())

	svc, err = NewJWTService(&config.Config{
		SecretKey: config.SecretKeyConfig{Access: testSecret},
		Auth:      &config.AuthConfig{TokenTTL: 30 * time.Minute},
	})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, svc.TokenDuration())
}
