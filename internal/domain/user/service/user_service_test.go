package service

import (
	"context"
	"testing"
	"time"

	"shop_backend/internal/domain/user/model"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/cache"
	baseModel "shop_backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByRole(ctx context.Context, role int) (bool, error) {
	args := m.Called(role)
	return args.Bool(0), args.Error(1)
}

func fakeIssuer(userID string, role int) (string, *time.Time, error) {
	expire := time.Now().Add(time.Hour)
	return "token-" + userID, &expire, nil
}

func createTestUser(t *testing.T, id, username, password string) *model.User {
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &model.User{
		BaseModel:    baseModel.BaseModel{ID: id},
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
}

func TestLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo, nil, fakeIssuer)
	ctx := context.Background()

	user := createTestUser(t, "user-1", "alice", "secret123")
	mockRepo.On("GetByUsername", "alice").Return(user, nil)
	mockRepo.On("GetByUsername", "bob").Return(nil, apperr.ErrNotFound)

	t.Run("Login success", func(t *testing.T) {
		result, err := service.Login(ctx, "alice", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "token-user-1", result.Token)
		assert.NotNil(t, result.ExpireAt)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, apperr.ErrAuthFailed)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := service.Login(ctx, "bob", "secret123")
		assert.ErrorIs(t, err, apperr.ErrAuthFailed)
	})
}

func TestRegister(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo, nil, fakeIssuer)
	ctx := context.Background()

	t.Run("Short password", func(t *testing.T) {
		_, err := service.Register(ctx, "carol", "123", "carol@example.com")
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})

	t.Run("Success hashes password", func(t *testing.T) {
		mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil).Once()

		user, err := service.Register(ctx, "carol", "secret123", "Carol@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "carol@example.com", user.Email)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.NotEqual(t, "secret123", user.PasswordHash)
	})
}

func TestGetProfile_Cached(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo, cache.NewMemoryCache(), fakeIssuer)
	ctx := context.Background()

	mockRepo.On("GetByID", "user-1").Return(createTestUser(t, "user-1", "alice", "secret123"), nil).Once()

	for i := 0; i < 3; i++ {
		user, err := service.GetProfile(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	}
	mockRepo.AssertNumberOfCalls(t, "GetByID", 1)
}
