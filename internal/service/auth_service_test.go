package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/pkg/apperror"
	"github.com/refind-app/refind-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail    map[string]*models.User
	usersByUsername map[string]*models.User
	usersByID       map[uuid.UUID]*models.User
	sessions        map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail:    make(map[string]*models.User),
		usersByUsername: make(map[string]*models.User),
		usersByID:       make(map[uuid.UUID]*models.User),
		sessions:        make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByUsername[user.Username] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.usersByUsername[username]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	m.usersByID[user.ID] = user
	m.usersByUsername[user.Username] = user
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func newAuthServiceForTest() (*AuthService, *mockAuthRepository) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	return NewAuthService(repo, tokenManager), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, repo := newAuthServiceForTest()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "Ivan@Example.com",
		Password: "Password123",
	}, nil)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "ivan@example.com", result.User.Email)
	assert.Equal(t, models.RoleUser, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.Len(t, repo.sessions, 1)

	login, err := svc.Login(ctx, LoginInput{
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "ivan2",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "email")
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "other@example.com",
		Password: "Password123",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "short",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{
		Email:    "ivan@example.com",
		Password: "WrongPassword1",
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, apperror.ErrInvalidCredentials, err)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{
		Email:    "nobody@example.com",
		Password: "Password123",
	}, nil)

	assert.Error(t, err)
	assert.Equal(t, apperror.ErrInvalidCredentials, err)
}

func TestAuthService_Login_Banned(t *testing.T) {
	svc, repo := newAuthServiceForTest()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	repo.usersByID[result.User.ID].IsBanned = true

	_, err = svc.Login(ctx, LoginInput{
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	svc, repo := newAuthServiceForTest()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	oldToken := result.TokenPair.RefreshToken
	pair, err := svc.Refresh(ctx, oldToken, nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, oldToken, pair.RefreshToken)
	_, oldAlive := repo.sessions[oldToken]
	assert.False(t, oldAlive)
	_, newAlive := repo.sessions[pair.RefreshToken]
	assert.True(t, newAlive)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not-a-jwt", nil)

	assert.Error(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	svc, repo := newAuthServiceForTest()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	assert.NoError(t, svc.Logout(ctx, result.TokenPair.RefreshToken))
	assert.Empty(t, repo.sessions)
}

func TestAuthService_UpdateProfile_UsernameTaken(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	second, err := svc.Register(ctx, RegisterInput{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	taken := first.User.Username
	_, err = svc.UpdateProfile(ctx, second.User.ID, &taken, nil)

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_UpdateProfile_ChangesPhone(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "Password123",
	}, nil)
	assert.NoError(t, err)

	phone := "+7 900 123-45-67"
	updated, err := svc.UpdateProfile(ctx, result.User.ID, nil, &phone)

	assert.NoError(t, err)
	if assert.NotNil(t, updated.Phone) {
		assert.Equal(t, phone, *updated.Phone)
	}
}
