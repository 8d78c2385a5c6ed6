package service

import (
	"context"
	"testing"
	"time"

	"sidequest/internal/model"
	"sidequest/internal/repository"
	"sidequest/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type capturedEvents struct {
	events []model.ProgressEvent
}

func (c *capturedEvents) PublishProgress(event model.ProgressEvent) {
	c.events = append(c.events, event)
}

func TestProgressService_SetCompletion(t *testing.T) {
	mockRepo := &mocks.MockProgressRepository{}
	events := &capturedEvents{}
	service := NewProgressService(mockRepo, events)

	userID := uuid.New()

	wescoe := &model.Location{ID: 10, Name: "Wescoe Hall", Type: "academic"}
	wescoeQuests := []*model.Quest{
		{ID: 1, LocationID: 10, Text: "Get free food once"},
		{ID: 2, LocationID: 10, Text: "Get free food twice", Dependency: int64Ptr(1)},
	}

	tests := []struct {
		name          string
		locationName  string
		questText     string
		completed     bool
		mockSetup     func()
		expectedError error
		checkRecord   func(*testing.T, *model.ProgressRecord)
		checkEvents   func(*testing.T, []model.ProgressEvent)
	}{
		{
			name:         "Unknown location",
			locationName: "Atlantis",
			questText:    "Get free food once",
			completed:    true,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Atlantis").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrLocationNotFound,
		},
		{
			name:         "Unknown quest text at known location",
			locationName: "Wescoe Hall",
			questText:    "Get free food thrice",
			completed:    true,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
			},
			expectedError: ErrQuestNotFound,
		},
		{
			name:         "Complete second step before first",
			locationName: "Wescoe Hall",
			questText:    "Get free food twice",
			completed:    true,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
				mockRepo.On("GetLocationCompletion", mock.Anything, userID, int64(10)).
					Return(map[int64]bool{1: false, 2: false}, nil)
			},
			expectedError: ErrDependencyNotMet,
		},
		{
			name:         "Complete first step",
			locationName: "Wescoe Hall",
			questText:    "Get free food once",
			completed:    true,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
				mockRepo.On("GetLocationCompletion", mock.Anything, userID, int64(10)).
					Return(map[int64]bool{1: false, 2: false}, nil)
				completedAt := time.Now().UTC()
				mockRepo.On("UpsertProgress", mock.Anything, mock.MatchedBy(func(record *model.ProgressRecord) bool {
					return record.UserID == userID &&
						record.QuestID == 1 &&
						record.Completed &&
						record.CompletedAt != nil
				})).Return(&model.ProgressRecord{
					ID:          100,
					UserID:      userID,
					QuestID:     1,
					Completed:   true,
					CompletedAt: &completedAt,
				}, nil)
			},
			checkRecord: func(t *testing.T, record *model.ProgressRecord) {
				assert.Equal(t, int64(100), record.ID)
				assert.True(t, record.Completed)
				assert.NotNil(t, record.CompletedAt)
			},
			checkEvents: func(t *testing.T, published []model.ProgressEvent) {
				assert.Len(t, published, 1)
				assert.Equal(t, "Wescoe Hall", published[0].LocationName)
				assert.Equal(t, "Get free food once", published[0].QuestText)
				assert.True(t, published[0].Completed)
			},
		},
		{
			name:         "Complete second step after first",
			locationName: "Wescoe Hall",
			questText:    "Get free food twice",
			completed:    true,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
				mockRepo.On("GetLocationCompletion", mock.Anything, userID, int64(10)).
					Return(map[int64]bool{1: true, 2: false}, nil)
				mockRepo.On("UpsertProgress", mock.Anything, mock.MatchedBy(func(record *model.ProgressRecord) bool {
					return record.QuestID == 2 && record.Completed
				})).Return(&model.ProgressRecord{
					ID:        101,
					UserID:    userID,
					QuestID:   2,
					Completed: true,
				}, nil)
			},
			checkRecord: func(t *testing.T, record *model.ProgressRecord) {
				assert.Equal(t, int64(2), record.QuestID)
				assert.True(t, record.Completed)
			},
		},
		{
			name:         "Uncomplete first step while second is completed",
			locationName: "Wescoe Hall",
			questText:    "Get free food once",
			completed:    false,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
				mockRepo.On("GetLocationCompletion", mock.Anything, userID, int64(10)).
					Return(map[int64]bool{1: true, 2: true}, nil)
			},
			expectedError: ErrDependentCompleted,
		},
		{
			name:         "Repeated completion is a no-op",
			locationName: "Wescoe Hall",
			questText:    "Get free food once",
			completed:    true,
			mockSetup: func() {
				completedAt := time.Now().Add(-time.Hour)
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
				mockRepo.On("GetLocationCompletion", mock.Anything, userID, int64(10)).
					Return(map[int64]bool{1: true, 2: false}, nil)
				mockRepo.On("GetProgressRecord", mock.Anything, userID, int64(1)).
					Return(&model.ProgressRecord{
						ID:          100,
						UserID:      userID,
						QuestID:     1,
						Completed:   true,
						CompletedAt: &completedAt,
					}, nil)
			},
			checkRecord: func(t *testing.T, record *model.ProgressRecord) {
				assert.Equal(t, int64(100), record.ID)
				assert.True(t, record.Completed)
			},
			checkEvents: func(t *testing.T, published []model.ProgressEvent) {
				assert.Empty(t, published)
			},
		},
		{
			name:         "Uncompleting a quest with no record is a no-op",
			locationName: "Wescoe Hall",
			questText:    "Get free food once",
			completed:    false,
			mockSetup: func() {
				mockRepo.On("GetLocationByName", mock.Anything, "Wescoe Hall").
					Return(wescoe, nil)
				mockRepo.On("GetQuestsByLocation", mock.Anything, int64(10)).
					Return(wescoeQuests, nil)
				mockRepo.On("GetLocationCompletion", mock.Anything, userID, int64(10)).
					Return(map[int64]bool{1: false, 2: false}, nil)
				mockRepo.On("GetProgressRecord", mock.Anything, userID, int64(1)).
					Return(nil, repository.ErrNotFound)
			},
			checkRecord: func(t *testing.T, record *model.ProgressRecord) {
				assert.Equal(t, int64(1), record.QuestID)
				assert.False(t, record.Completed)
				assert.Nil(t, record.CompletedAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			mockRepo.Calls = nil
			events.events = nil

			tt.mockSetup()

			record, err := service.SetCompletion(context.Background(), userID, tt.locationName, tt.questText, tt.completed)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, record)
			}

			if tt.checkRecord != nil {
				tt.checkRecord(t, record)
			}
			if tt.checkEvents != nil {
				tt.checkEvents(t, events.events)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProgressService_GetProgress(t *testing.T) {
	mockRepo := &mocks.MockProgressRepository{}
	service := NewProgressService(mockRepo, nil)

	userID := uuid.New()

	t.Run("No records yields empty map", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetUserProgress", mock.Anything, userID).
			Return(model.UserProgress(nil), nil)

		progress, err := service.GetProgress(context.Background(), userID)

		assert.NoError(t, err)
		assert.NotNil(t, progress)
		assert.Empty(t, progress)
	})

	t.Run("Records grouped by location and quest text", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		completedAt := time.Now().Add(-time.Hour)
		mockRepo.On("GetUserProgress", mock.Anything, userID).
			Return(model.UserProgress{
				"Wescoe Hall": {
					"Get free food once": {QuestID: 1, Completed: true, CompletedAt: &completedAt},
				},
			}, nil)

		progress, err := service.GetProgress(context.Background(), userID)

		assert.NoError(t, err)
		assert.Contains(t, progress, "Wescoe Hall")
		assert.True(t, progress["Wescoe Hall"]["Get free food once"].Completed)
	})
}

func TestProgressService_CompletionSummary(t *testing.T) {
	mockRepo := &mocks.MockProgressRepository{}
	service := NewProgressService(mockRepo, nil)

	userID := uuid.New()

	tests := []struct {
		name      string
		total     int
		completed int
		expected  *model.CompletionSummary
	}{
		{
			name:      "Partial completion rounds to nearest percent",
			total:     10,
			completed: 3,
			expected:  &model.CompletionSummary{Completed: 3, Total: 10, Percentage: 30},
		},
		{
			name:      "Empty catalog",
			total:     0,
			completed: 0,
			expected:  &model.CompletionSummary{Completed: 0, Total: 0, Percentage: 0},
		},
		{
			name:      "Everything completed",
			total:     7,
			completed: 7,
			expected:  &model.CompletionSummary{Completed: 7, Total: 7, Percentage: 100},
		},
		{
			name:      "One of three rounds down",
			total:     3,
			completed: 1,
			expected:  &model.CompletionSummary{Completed: 1, Total: 3, Percentage: 33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			mockRepo.On("CountQuests", mock.Anything).Return(tt.total, nil)
			mockRepo.On("CountCompleted", mock.Anything, userID).Return(tt.completed, nil)

			summary, err := service.CompletionSummary(context.Background(), userID)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, summary)
		})
	}
}

func TestProgressService_Leaderboard(t *testing.T) {
	mockRepo := &mocks.MockProgressRepository{}
	service := NewProgressService(mockRepo, nil)

	entries := []*model.LeaderboardEntry{
		{UserID: uuid.New(), DisplayName: "Ada", CompletedCount: 9},
		{UserID: uuid.New(), DisplayName: "Grace", CompletedCount: 4},
	}

	t.Run("Explicit limit is passed through", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetLeaderboard", mock.Anything, 5).Return(entries, nil)

		got, err := service.Leaderboard(context.Background(), 5)

		assert.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("Non-positive limit falls back to default", func(t *testing.T) {
		mockRepo.ExpectedCalls = nil
		mockRepo.On("GetLeaderboard", mock.Anything, DefaultLeaderboardLimit).Return(entries, nil)

		got, err := service.Leaderboard(context.Background(), 0)

		assert.NoError(t, err)
		assert.Equal(t, entries, got)
	})
}
