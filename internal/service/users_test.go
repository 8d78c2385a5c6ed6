package service

import (
	"context"
	"testing"

	"sidequest/internal/model"
	"sidequest/internal/repository"
	"sidequest/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{}
	service := NewUserService(mockRepo)

	tests := []struct {
		name          string
		userName      string
		email         string
		password      string
		mockSetup     func()
		expectedError error
		checkUser     func(*testing.T, *model.User)
	}{
		{
			name:     "Successful registration",
			userName: "  Ada  ",
			email:    " Ada@Example.COM ",
			password: "hunter2",
			mockSetup: func() {
				mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(user *model.User) bool {
					return user.Name == "Ada" &&
						user.Email == "ada@example.com" &&
						user.PasswordHash != "" &&
						user.PasswordHash != "hunter2"
				})).Return(nil)
			},
			checkUser: func(t *testing.T, user *model.User) {
				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2")))
			},
		},
		{
			name:      "Missing fields",
			userName:  "Ada",
			email:     "",
			password:  "hunter2",
			mockSetup: func() {},
		},
		{
			name:     "Email already taken",
			userName: "Ada",
			email:    "ada@example.com",
			password: "hunter2",
			mockSetup: func() {
				mockRepo.On("CreateUser", mock.Anything, mock.Anything).
					Return(repository.ErrDuplicate)
			},
			expectedError: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			mockRepo.Calls = nil

			tt.mockSetup()

			user, err := service.Register(context.Background(), tt.userName, tt.email, tt.password)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.checkUser != nil:
				assert.NoError(t, err)
				tt.checkUser(t, user)
			default:
				assert.Error(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{}
	service := NewUserService(mockRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	stored := &model.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
	}

	tests := []struct {
		name          string
		email         string
		password      string
		mockSetup     func()
		expectedError error
	}{
		{
			name:     "Correct credentials",
			email:    "ada@example.com",
			password: "hunter2",
			mockSetup: func() {
				mockRepo.On("GetUserByEmail", mock.Anything, "ada@example.com").
					Return(stored, nil)
			},
		},
		{
			name:     "Email is normalized before lookup",
			email:    " Ada@Example.COM ",
			password: "hunter2",
			mockSetup: func() {
				mockRepo.On("GetUserByEmail", mock.Anything, "ada@example.com").
					Return(stored, nil)
			},
		},
		{
			name:     "Wrong password",
			email:    "ada@example.com",
			password: "hunter3",
			mockSetup: func() {
				mockRepo.On("GetUserByEmail", mock.Anything, "ada@example.com").
					Return(stored, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "Unknown email maps to the same error",
			email:    "nobody@example.com",
			password: "hunter2",
			mockSetup: func() {
				mockRepo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			mockRepo.Calls = nil

			tt.mockSetup()

			user, err := service.Authenticate(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, stored.ID, user.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetByID(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{}
	service := NewUserService(mockRepo)

	userID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetUserByID", mock.Anything, userID).
			Return(&model.User{ID: userID, Name: "Ada"}, nil)

		user, err := service.GetByID(context.Background(), userID)

		assert.NoError(t, err)
		assert.Equal(t, "Ada", user.Name)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetUserByID", mock.Anything, userID).
			Return(nil, repository.ErrNotFound)

		_, err := service.GetByID(context.Background(), userID)

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
