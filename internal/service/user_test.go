package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BinhLe15/bookworm-app/internal/auth"
	"github.com/BinhLe15/bookworm-app/internal/domain"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

func newTestUserService(repo *mockUserRepository) *UserService {
	jwt := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	return NewUserService(repo, jwt, newTestProducer(), newTestLogger())
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	// Min cost keeps the test fast; production uses a higher cost.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(ctx, RegisterInput{
		Email:     "Reader@Example.COM",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})

	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestUserService(new(mockUserRepository))

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "reader@example.com",
		Password: "short",
	})

	assert.Nil(t, user)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "reader@example.com"))

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "reader@example.com",
		Password: "correct-horse",
	})

	assert.Nil(t, user)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "reader@example.com").Return(&domain.User{
		ID:           "user-1",
		Email:        "reader@example.com",
		PasswordHash: hashFor(t, "correct-horse"),
		Role:         domain.RoleCustomer,
	}, nil)

	pair, err := svc.Login(ctx, LoginInput{Email: "reader@example.com", Password: "correct-horse"})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "reader@example.com").Return(&domain.User{
		ID:           "user-1",
		Email:        "reader@example.com",
		PasswordHash: hashFor(t, "correct-horse"),
	}, nil)

	pair, err := svc.Login(ctx, LoginInput{Email: "reader@example.com", Password: "wrong"})

	assert.Nil(t, pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmail_SameError(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	pair, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})

	assert.Nil(t, pair)
	require.Error(t, err)
	// Unknown email and wrong password are indistinguishable to the caller.
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestRefresh_ReissuesTokens(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	refresh, err := svc.jwt.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	repo.On("GetByID", ctx, "user-1").Return(&domain.User{
		ID:    "user-1",
		Email: "reader@example.com",
		Role:  domain.RoleCustomer,
	}, nil)

	pair, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := newTestUserService(new(mockUserRepository))

	pair, err := svc.Refresh(context.Background(), "garbage")

	assert.Nil(t, pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnsureAdmin_SkipsWhenAdminExists(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("CountByRole", ctx, domain.RoleAdmin).Return(1, nil)

	err := svc.EnsureAdmin(ctx, "admin@bookworm.local", "admin-password")
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnsureAdmin_SeedsFirstAdmin(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("CountByRole", ctx, domain.RoleAdmin).Return(0, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleAdmin && u.Email == "admin@bookworm.local"
	})).Return(nil)

	err := svc.EnsureAdmin(ctx, "admin@bookworm.local", "admin-password")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestEnsureAdmin_ConcurrentSeedTolerated(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestUserService(repo)
	ctx := context.Background()

	repo.On("CountByRole", ctx, domain.RoleAdmin).Return(0, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "admin@bookworm.local"))

	err := svc.EnsureAdmin(ctx, "admin@bookworm.local", "admin-password")
	require.NoError(t, err)
}
