package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pfe-app/backend/internal/api"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string, role Role) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthRepo) UpdateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Test cases for AuthService
func TestRegister(t *testing.T) {
	logger := slog.Default()
	tokens := NewTokenIssuer(testJWTConfig())

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		created := &User{ID: "user123", Name: "Test User", Email: "a@b.com", Role: RoleUser}
		mockRepo.On("GetUserByEmail", ctx, "a@b.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "Test User", "a@b.com", mock.AnythingOfType("string"), RoleUser).
			Run(func(args mock.Arguments) {
				// The store only ever sees a hash of the plaintext.
				hash := args.String(3)
				assert.NotEqual(t, "password123", hash)
				assert.NoError(t, ComparePasswordAndHash("password123", hash))
			}).
			Return(created, nil).Once()

		user, token, err := service.Register(ctx, "Test User", " A@b.com ", "password123", "")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "user123", user.ID)
		assert.Empty(t, user.PasswordHash)

		subject, err := tokens.Verify(token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, subject)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailLowercasedAndTrimmed", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		created := &User{ID: "user123", Email: "upper@case.com", Role: RoleUser}
		mockRepo.On("GetUserByEmail", ctx, "upper@case.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "Test User", "upper@case.com", mock.AnythingOfType("string"), RoleUser).
			Return(created, nil).Once()

		_, _, err := service.Register(ctx, "Test User", "  UPPER@Case.Com ", "password123", "")
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)

		_, _, err := service.Register(context.Background(), "Test User", "a@b.com", "password123", "superuser")
		assert.ErrorIs(t, err, api.ErrInvalidRole)
		assert.ErrorIs(t, err, api.ErrValidation)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("DuplicateEmailPreCheck", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		existing := &User{ID: "user123", Email: "a@b.com"}
		mockRepo.On("GetUserByEmail", ctx, "a@b.com").Return(existing, nil).Once()

		_, _, err := service.Register(ctx, "Test User", "A@b.com", "password123", "")
		assert.ErrorIs(t, err, api.ErrConflict)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("DuplicateEmailConstraintRace", func(t *testing.T) {
		// The pre-check misses, but the unique constraint still wins the race.
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "a@b.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "Test User", "a@b.com", mock.AnythingOfType("string"), RoleUser).
			Return(nil, api.ErrConflict).Once()

		_, _, err := service.Register(ctx, "Test User", "a@b.com", "password123", "")
		assert.ErrorIs(t, err, api.ErrConflict)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PasswordTooShort", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)

		_, _, err := service.Register(context.Background(), "Test User", "a@b.com", "1234567", "")
		assert.ErrorIs(t, err, api.ErrValidation)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("PasswordExactlyMinLength", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		created := &User{ID: "user123", Email: "a@b.com", Role: RoleUser}
		mockRepo.On("GetUserByEmail", ctx, "a@b.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "Test User", "a@b.com", mock.AnythingOfType("string"), RoleUser).
			Return(created, nil).Once()

		_, _, err := service.Register(ctx, "Test User", "a@b.com", "12345678", "")
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmptyName", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)

		_, _, err := service.Register(context.Background(), "  ", "a@b.com", "password123", "")
		assert.ErrorIs(t, err, api.ErrValidation)
	})

	t.Run("MalformedEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)

		_, _, err := service.Register(context.Background(), "Test User", "not-an-email", "password123", "")
		assert.ErrorIs(t, err, api.ErrValidation)
	})

	t.Run("WorkerRoleAccepted", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		created := &User{ID: "user123", Email: "a@b.com", Role: RoleWorker}
		mockRepo.On("GetUserByEmail", ctx, "a@b.com").Return(nil, api.ErrNotFound).Once()
		mockRepo.On("CreateUser", ctx, "Test User", "a@b.com", mock.AnythingOfType("string"), RoleWorker).
			Return(created, nil).Once()

		user, _, err := service.Register(ctx, "Test User", "a@b.com", "password123", "worker")
		assert.NoError(t, err)
		assert.Equal(t, RoleWorker, user.Role)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	logger := slog.Default()
	tokens := NewTokenIssuer(testJWTConfig())

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		hash, _ := HashPassword("password123")
		user := &User{ID: "user123", Email: "test@example.com", PasswordHash: hash, Role: RoleUser}
		mockRepo.On("GetUserByEmail", ctx, "test@example.com").Return(user, nil).Once()

		got, token, err := service.Login(ctx, "test@example.com", "password123")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "user123", got.ID)
		assert.Empty(t, got.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		mockRepo.On("GetUserByEmail", ctx, "nonexistent@example.com").Return(nil, api.ErrNotFound).Once()

		_, _, err := service.Login(ctx, "nonexistent@example.com", "password123")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		hash, _ := HashPassword("correctpassword")
		user := &User{ID: "user123", Email: "test@example.com", PasswordHash: hash}
		mockRepo.On("GetUserByEmail", ctx, "test@example.com").Return(user, nil).Once()

		_, _, err := service.Login(ctx, "test@example.com", "wrongpassword")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("SameFailureKindForBothCauses", func(t *testing.T) {
		// Unknown email and wrong password must be indistinguishable.
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		hash, _ := HashPassword("correctpassword")
		known := &User{ID: "user123", Email: "known@example.com", PasswordHash: hash}
		mockRepo.On("GetUserByEmail", ctx, "known@example.com").Return(known, nil).Once()
		mockRepo.On("GetUserByEmail", ctx, "unknown@example.com").Return(nil, api.ErrNotFound).Once()

		_, _, errWrongPassword := service.Login(ctx, "known@example.com", "wrongpassword")
		_, _, errUnknownEmail := service.Login(ctx, "unknown@example.com", "whatever123")

		assert.ErrorIs(t, errWrongPassword, api.ErrUnauthenticated)
		assert.ErrorIs(t, errUnknownEmail, api.ErrUnauthenticated)
		assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	})
}

func TestGetCurrentUser(t *testing.T) {
	logger := slog.Default()
	tokens := NewTokenIssuer(testJWTConfig())

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		user := &User{ID: "user123", Email: "test@example.com", Role: RoleUser}
		mockRepo.On("GetUserByID", ctx, "user123").Return(user, nil).Once()

		got, err := service.GetCurrentUser(ctx, "user123")
		assert.NoError(t, err)
		assert.Equal(t, "user123", got.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NoSubjectEstablished", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)

		_, err := service.GetCurrentUser(context.Background(), "")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "GetUserByID")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		mockRepo.On("GetUserByID", ctx, "ghost").Return(nil, api.ErrNotFound).Once()

		_, err := service.GetCurrentUser(ctx, "ghost")
		assert.ErrorIs(t, err, api.ErrNotFound)
	})

	t.Run("InfrastructureFault", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, tokens, logger)
		ctx := context.Background()

		mockRepo.On("GetUserByID", ctx, "user123").Return(nil, errors.New("connection refused")).Once()

		_, err := service.GetCurrentUser(ctx, "user123")
		assert.ErrorIs(t, err, api.ErrInternal)
	})
}
