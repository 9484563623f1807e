package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/masjidkita/masjidkita/internal/auth/domain"
	authrepo "github.com/masjidkita/masjidkita/internal/auth/repository"
)

func newAuthService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	return New(zap.NewNop(), authrepo.NewRepository(conn), authrepo.NewSessionRepository(conn), node)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "  Aisyah@Example.COM ",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "aisyah@example.com", user.Email)
	assert.Equal(t, "aisyah", user.DisplayName)
	assert.Equal(t, domain.RoleMember, user.Role)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "A@example.com", Password: "s3cret-password"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestCreateUserShortPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "a@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUserIgnoresUnknownRole(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:    "a@example.com",
		Password: "s3cret-password",
		Role:     "superuser",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, user.Role)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "a@example.com", Password: "s3cret-password"})
	require.NoError(t, err)
	require.NotEmpty(t, result.RawToken)

	session, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "a@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmailIsIndistinguishable(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "whatever-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "a@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.RawToken))

	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
