package mocks

import (
	"context"

	"sidequest/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetUserProgress(ctx context.Context, userID uuid.UUID) (model.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) GetLocationCompletion(ctx context.Context, userID uuid.UUID, locationID int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockProgressRepository) GetProgressRecord(ctx context.Context, userID uuid.UUID, questID int64) (*model.ProgressRecord, error) {
	args := m.Called(ctx, userID, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressRecord), args.Error(1)
}

func (m *MockProgressRepository) UpsertProgress(ctx context.Context, record *model.ProgressRecord) (*model.ProgressRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProgressRecord), args.Error(1)
}

func (m *MockProgressRepository) CountQuests(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressRepository) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressRepository) GetLocationSummaries(ctx context.Context, userID uuid.UUID) ([]*model.LocationCompletion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LocationCompletion), args.Error(1)
}

func (m *MockProgressRepository) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockProgressRepository) GetLocationByName(ctx context.Context, name string) (*model.Location, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockProgressRepository) GetQuestsByLocation(ctx context.Context, locationID int64) ([]*model.Quest, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quest), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListLocations(ctx context.Context) ([]*model.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Location), args.Error(1)
}

func (m *MockCatalogRepository) CreateLocation(ctx context.Context, location *model.Location) (*model.Location, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockCatalogRepository) UpdateLocation(ctx context.Context, locationID int64, updates map[string]interface{}) (*model.Location, error) {
	args := m.Called(ctx, locationID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockCatalogRepository) DeleteLocation(ctx context.Context, locationID int64) error {
	args := m.Called(ctx, locationID)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListQuests(ctx context.Context) ([]*model.Quest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quest), args.Error(1)
}

func (m *MockCatalogRepository) GetQuestByID(ctx context.Context, questID int64) (*model.Quest, error) {
	args := m.Called(ctx, questID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockCatalogRepository) GetQuestsByLocation(ctx context.Context, locationID int64) ([]*model.Quest, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quest), args.Error(1)
}

func (m *MockCatalogRepository) CreateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error) {
	args := m.Called(ctx, quest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockCatalogRepository) UpdateQuest(ctx context.Context, quest *model.Quest, clearDependents bool) (*model.Quest, error) {
	args := m.Called(ctx, quest, clearDependents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockCatalogRepository) DeleteQuest(ctx context.Context, questID int64) error {
	args := m.Called(ctx, questID)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
