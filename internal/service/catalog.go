package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sidequest/internal/model"
	"sidequest/internal/repository"
)

type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// MapData returns the full catalog the map UI renders: every location
// plus every quest with its dependency reference.
func (s *CatalogService) MapData(ctx context.Context) ([]*model.Location, []*model.Quest, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list locations: %w", err)
	}

	quests, err := s.repo.ListQuests(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list quests: %w", err)
	}

	return locations, quests, nil
}

func (s *CatalogService) ListLocations(ctx context.Context) ([]*model.Location, error) {
	return s.repo.ListLocations(ctx)
}

func (s *CatalogService) CreateLocation(ctx context.Context, location *model.Location) (*model.Location, error) {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return nil, fmt.Errorf("location name is required")
	}

	created, err := s.repo.CreateLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	return created, nil
}

func (s *CatalogService) UpdateLocation(ctx context.Context, locationID int64, updates map[string]interface{}) (*model.Location, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	updated, err := s.repo.UpdateLocation(ctx, locationID, updates)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	return updated, nil
}

func (s *CatalogService) DeleteLocation(ctx context.Context, locationID int64) error {
	err := s.repo.DeleteLocation(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return nil
}

func (s *CatalogService) ListQuests(ctx context.Context) ([]*model.Quest, error) {
	return s.repo.ListQuests(ctx)
}

func (s *CatalogService) CreateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error) {
	quest.Text = strings.TrimSpace(quest.Text)
	if quest.Text == "" {
		return nil, fmt.Errorf("quest text is required")
	}

	if quest.Dependency != nil {
		siblings, err := s.repo.GetQuestsByLocation(ctx, quest.LocationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get location quests: %w", err)
		}
		if err := ValidateDependency(quest, siblings); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.CreateQuest(ctx, quest)
	if err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}

	return created, nil
}

// UpdateQuest rewrites a quest. Moving it to another location clears
// the dependency references of its dependents in the same transaction,
// since those would otherwise point across locations.
func (s *CatalogService) UpdateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error) {
	existing, err := s.repo.GetQuestByID(ctx, quest.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}

	quest.Text = strings.TrimSpace(quest.Text)
	if quest.Text == "" {
		return nil, fmt.Errorf("quest text is required")
	}

	locationChanged := existing.LocationID != quest.LocationID

	if quest.Dependency != nil {
		siblings, err := s.repo.GetQuestsByLocation(ctx, quest.LocationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get location quests: %w", err)
		}
		if err := ValidateDependency(quest, siblings); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateQuest(ctx, quest, locationChanged)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to update quest: %w", err)
	}

	return updated, nil
}

// DeleteQuest removes a quest; dependents keep existing but lose their
// dependency reference, and the quest's progress rows go with it.
func (s *CatalogService) DeleteQuest(ctx context.Context, questID int64) error {
	err := s.repo.DeleteQuest(ctx, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestNotFound
		}
		return fmt.Errorf("failed to delete quest: %w", err)
	}
	return nil
}
