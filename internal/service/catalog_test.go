package service

import (
	"context"
	"testing"

	"sidequest/internal/model"
	"sidequest/internal/repository"
	"sidequest/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCatalogService_CreateQuest(t *testing.T) {
	mockRepo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(mockRepo)

	siblings := []*model.Quest{
		{ID: 1, LocationID: 10, Text: "Get free food once"},
		{ID: 2, LocationID: 10, Text: "Get free food twice", Dependency: int64Ptr(1)},
	}

	tests := []struct {
		name          string
		quest         *model.Quest
		mockSetup     func()
		expectedError error
		checkQuest    func(*testing.T, *model.Quest)
	}{
		{
			name:  "Quest without dependency",
			quest: &model.Quest{LocationID: 10, Text: "  Find the mural  "},
			mockSetup: func() {
				mockRepo.On("CreateQuest", mock.Anything, mock.MatchedBy(func(quest *model.Quest) bool {
					return quest.Text == "Find the mural"
				})).Return(&model.Quest{ID: 3, LocationID: 10, Text: "Find the mural"}, nil)
			},
			checkQuest: func(t *testing.T, quest *model.Quest) {
				assert.Equal(t, int64(3), quest.ID)
				assert.Equal(t, "Find the mural", quest.Text)
			},
		},
		{
			name:      "Blank text",
			quest:     &model.Quest{LocationID: 10, Text: "   "},
			mockSetup: func() {},
			expectedError: assert.AnError,
		},
		{
			name:  "Dependency on sibling",
			quest: &model.Quest{LocationID: 10, Text: "Get free food thrice", Dependency: int64Ptr(2)},
			mockSetup: func() {
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(siblings, nil)
				mockRepo.On("CreateQuest", mock.Anything, mock.Anything).
					Return(&model.Quest{ID: 4, LocationID: 10, Text: "Get free food thrice", Dependency: int64Ptr(2)}, nil)
			},
			checkQuest: func(t *testing.T, quest *model.Quest) {
				assert.NotNil(t, quest.Dependency)
				assert.Equal(t, int64(2), *quest.Dependency)
			},
		},
		{
			name:  "Dependency on quest at another location",
			quest: &model.Quest{LocationID: 10, Text: "Cross the line", Dependency: int64Ptr(99)},
			mockSetup: func() {
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(siblings, nil)
			},
			expectedError: ErrDependencyForeign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			mockRepo.Calls = nil

			tt.mockSetup()

			quest, err := service.CreateQuest(context.Background(), tt.quest)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if tt.expectedError != assert.AnError {
					assert.ErrorIs(t, err, tt.expectedError)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, quest)
			}

			if tt.checkQuest != nil {
				tt.checkQuest(t, quest)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_UpdateQuest(t *testing.T) {
	mockRepo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(mockRepo)

	tests := []struct {
		name          string
		quest         *model.Quest
		mockSetup     func()
		expectedError error
	}{
		{
			name:  "Unknown quest",
			quest: &model.Quest{ID: 42, LocationID: 10, Text: "Ghost quest"},
			mockSetup: func() {
				mockRepo.On("GetQuestByID", mock.Anything, int64(42)).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrQuestNotFound,
		},
		{
			name:  "Update in place keeps dependents",
			quest: &model.Quest{ID: 1, LocationID: 10, Text: "Get free food once, updated"},
			mockSetup: func() {
				mockRepo.On("GetQuestByID", mock.Anything, int64(1)).
					Return(&model.Quest{ID: 1, LocationID: 10, Text: "Get free food once"}, nil)
				mockRepo.On("UpdateQuest", mock.Anything, mock.Anything, false).
					Return(&model.Quest{ID: 1, LocationID: 10, Text: "Get free food once, updated"}, nil)
			},
		},
		{
			name:  "Moving to another location clears dependents",
			quest: &model.Quest{ID: 1, LocationID: 20, Text: "Get free food once"},
			mockSetup: func() {
				mockRepo.On("GetQuestByID", mock.Anything, int64(1)).
					Return(&model.Quest{ID: 1, LocationID: 10, Text: "Get free food once"}, nil)
				mockRepo.On("UpdateQuest", mock.Anything, mock.Anything, true).
					Return(&model.Quest{ID: 1, LocationID: 20, Text: "Get free food once"}, nil)
			},
		},
		{
			name:  "Self dependency rejected",
			quest: &model.Quest{ID: 1, LocationID: 10, Text: "Get free food once", Dependency: int64Ptr(1)},
			mockSetup: func() {
				mockRepo.On("GetQuestByID", mock.Anything, int64(1)).
					Return(&model.Quest{ID: 1, LocationID: 10, Text: "Get free food once"}, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return([]*model.Quest{
						{ID: 1, LocationID: 10, Text: "Get free food once"},
					}, nil)
			},
			expectedError: ErrDependencyCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			mockRepo.Calls = nil

			tt.mockSetup()

			_, err := service.UpdateQuest(context.Background(), tt.quest)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_Locations(t *testing.T) {
	mockRepo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(mockRepo)

	t.Run("Create trims the name", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("CreateLocation", mock.Anything, mock.MatchedBy(func(location *model.Location) bool {
			return location.Name == "Wescoe Hall"
		})).Return(&model.Location{ID: 10, Name: "Wescoe Hall"}, nil)

		created, err := service.CreateLocation(context.Background(), &model.Location{Name: " Wescoe Hall "})

		assert.NoError(t, err)
		assert.Equal(t, int64(10), created.ID)
	})

	t.Run("Create rejects blank name", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil

		_, err := service.CreateLocation(context.Background(), &model.Location{Name: "  "})

		assert.Error(t, err)
	})

	t.Run("Update with no fields", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil

		_, err := service.UpdateLocation(context.Background(), 10, map[string]interface{}{})

		assert.Error(t, err)
	})

	t.Run("Update unknown location", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("UpdateLocation", mock.Anything, int64(42), mock.Anything).
			Return(nil, repository.ErrNotFound)

		_, err := service.UpdateLocation(context.Background(), 42, map[string]interface{}{"name": "New"})

		assert.ErrorIs(t, err, ErrLocationNotFound)
	})

	t.Run("Delete unknown location", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("DeleteLocation", mock.Anything, int64(42)).
			Return(repository.ErrNotFound)

		err := service.DeleteLocation(context.Background(), 42)

		assert.ErrorIs(t, err, ErrLocationNotFound)
	})
}

func TestCatalogService_MapData(t *testing.T) {
	mockRepo := &mocks.MockCatalogRepository{}
	service := NewCatalogService(mockRepo)

	locations := []*model.Location{
		{ID: 10, Name: "Wescoe Hall", Type: "academic", X: 38.4, Y: 51.2},
	}
	quests := []*model.Quest{
		{ID: 1, LocationID: 10, Text: "Get free food once"},
		{ID: 2, LocationID: 10, Text: "Get free food twice", Dependency: int64Ptr(1)},
	}

	mockRepo.On("ListLocations", mock.Anything).Return(locations, nil)
	mockRepo.On("ListQuests", mock.Anything).Return(quests, nil)

	gotLocations, gotQuests, err := service.MapData(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, locations, gotLocations)
	assert.Equal(t, quests, gotQuests)
}
