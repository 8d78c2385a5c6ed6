package service

import (
	"context"
	"errors"

	"sidequest/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrLocationNotFound = errors.New("location not found")
	ErrQuestNotFound    = errors.New("quest not found")
)

type UserServiceI interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type ProgressServiceI interface {
	GetProgress(ctx context.Context, userID uuid.UUID) (model.UserProgress, error)
	SetCompletion(ctx context.Context, userID uuid.UUID, locationName, questText string, completed bool) (*model.ProgressRecord, error)
	CompletionSummary(ctx context.Context, userID uuid.UUID) (*model.CompletionSummary, error)
	LocationSummaries(ctx context.Context, userID uuid.UUID) ([]*model.LocationCompletion, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

type ProgressRepository interface {
	GetUserProgress(ctx context.Context, userID uuid.UUID) (model.UserProgress, error)
	GetLocationCompletion(ctx context.Context, userID uuid.UUID, locationID int64) (map[int64]bool, error)
	GetProgressRecord(ctx context.Context, userID uuid.UUID, questID int64) (*model.ProgressRecord, error)
	UpsertProgress(ctx context.Context, record *model.ProgressRecord) (*model.ProgressRecord, error)
	CountQuests(ctx context.Context) (int, error)
	CountCompleted(ctx context.Context, userID uuid.UUID) (int, error)
	GetLocationSummaries(ctx context.Context, userID uuid.UUID) ([]*model.LocationCompletion, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)

	GetLocationByName(ctx context.Context, name string) (*model.Location, error)
	GetQuestsByLocation(ctx context.Context, locationID int64) ([]*model.Quest, error)
}

type CatalogServiceI interface {
	MapData(ctx context.Context) ([]*model.Location, []*model.Quest, error)
	ListLocations(ctx context.Context) ([]*model.Location, error)
	CreateLocation(ctx context.Context, location *model.Location) (*model.Location, error)
	UpdateLocation(ctx context.Context, locationID int64, updates map[string]interface{}) (*model.Location, error)
	DeleteLocation(ctx context.Context, locationID int64) error
	ListQuests(ctx context.Context) ([]*model.Quest, error)
	CreateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error)
	UpdateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error)
	DeleteQuest(ctx context.Context, questID int64) error
}

type CatalogRepository interface {
	ListLocations(ctx context.Context) ([]*model.Location, error)
	CreateLocation(ctx context.Context, location *model.Location) (*model.Location, error)
	UpdateLocation(ctx context.Context, locationID int64, updates map[string]interface{}) (*model.Location, error)
	DeleteLocation(ctx context.Context, locationID int64) error
	ListQuests(ctx context.Context) ([]*model.Quest, error)
	GetQuestByID(ctx context.Context, questID int64) (*model.Quest, error)
	GetQuestsByLocation(ctx context.Context, locationID int64) ([]*model.Quest, error)
	CreateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error)
	UpdateQuest(ctx context.Context, quest *model.Quest, clearDependents bool) (*model.Quest, error)
	DeleteQuest(ctx context.Context, questID int64) error
}

// EventPublisher receives accepted progress mutations for fan-out to
// live feed subscribers. Implementations must not block.
type EventPublisher interface {
	PublishProgress(event model.ProgressEvent)
}
