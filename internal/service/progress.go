package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"sidequest/internal/model"
	"sidequest/internal/repository"

	"github.com/google/uuid"
)

const DefaultLeaderboardLimit = 20

type ProgressService struct {
	repo   ProgressRepository
	events EventPublisher
}

func NewProgressService(repo ProgressRepository, events EventPublisher) *ProgressService {
	return &ProgressService{
		repo:   repo,
		events: events,
	}
}

func (s *ProgressService) GetProgress(ctx context.Context, userID uuid.UUID) (model.UserProgress, error) {
	progress, err := s.repo.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}

	// A user with no records gets an empty map, never an error.
	if progress == nil {
		progress = make(model.UserProgress)
	}

	return progress, nil
}

// SetCompletion resolves the quest by location name and exact text,
// runs the dependency gate against the user's current snapshot for that
// location, and upserts the progress row. A repeated call with the same
// target state skips the write and returns the current record.
func (s *ProgressService) SetCompletion(ctx context.Context, userID uuid.UUID, locationName, questText string, completed bool) (*model.ProgressRecord, error) {
	location, err := s.repo.GetLocationByName(ctx, locationName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to resolve location: %w", err)
	}

	quests, err := s.repo.GetQuestsByLocation(ctx, location.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get location quests: %w", err)
	}

	var quest *model.Quest
	for _, q := range quests {
		if q.Text == questText {
			quest = q
			break
		}
	}
	if quest == nil {
		return nil, ErrQuestNotFound
	}

	snapshot, err := s.repo.GetLocationCompletion(ctx, userID, location.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion snapshot: %w", err)
	}

	if snapshot[quest.ID] == completed {
		return s.currentRecord(ctx, userID, quest.ID, completed)
	}

	if err := CanSetCompletion(quest, quests, snapshot, completed); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &model.ProgressRecord{
		UserID:    userID,
		QuestID:   quest.ID,
		Completed: completed,
		UpdatedAt: now,
	}
	if completed {
		record.CompletedAt = &now
	}

	persisted, err := s.repo.UpsertProgress(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if s.events != nil {
		s.events.PublishProgress(model.ProgressEvent{
			UserID:       userID,
			LocationName: location.Name,
			QuestID:      quest.ID,
			QuestText:    quest.Text,
			Completed:    persisted.Completed,
			CompletedAt:  persisted.CompletedAt,
		})
	}

	return persisted, nil
}

// currentRecord serves the idempotent no-op path. When no row exists
// the absence itself encodes "not completed", so a synthetic record is
// returned rather than writing one.
func (s *ProgressService) currentRecord(ctx context.Context, userID uuid.UUID, questID int64, completed bool) (*model.ProgressRecord, error) {
	record, err := s.repo.GetProgressRecord(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.ProgressRecord{
				UserID:    userID,
				QuestID:   questID,
				Completed: completed,
			}, nil
		}
		return nil, fmt.Errorf("failed to get progress record: %w", err)
	}

	return record, nil
}

func (s *ProgressService) CompletionSummary(ctx context.Context, userID uuid.UUID) (*model.CompletionSummary, error) {
	total, err := s.repo.CountQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count quests: %w", err)
	}

	completed, err := s.repo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed quests: %w", err)
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return &model.CompletionSummary{
		Completed:  completed,
		Total:      total,
		Percentage: percentage,
	}, nil
}

func (s *ProgressService) LocationSummaries(ctx context.Context, userID uuid.UUID) ([]*model.LocationCompletion, error) {
	summaries, err := s.repo.GetLocationSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get location summaries: %w", err)
	}
	return summaries, nil
}

func (s *ProgressService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}
