package model

import (
	"time"

	"github.com/google/uuid"
)

// ProgressRecord is the persisted completion state for one
// (user, quest) pair. At most one exists per pair; absence means not
// completed.
type ProgressRecord struct {
	ID          int64
	UserID      uuid.UUID
	QuestID     int64
	Completed   bool
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

type QuestProgress struct {
	QuestID     int64      `json:"quest_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// UserProgress groups a user's quest progress by location name, then
// quest text, matching the shape the map UI consumes.
type UserProgress map[string]map[string]QuestProgress

type CompletionSummary struct {
	Completed  int
	Total      int
	Percentage int
}

// LocationCompletion is the per-location slice of a user's progress.
// CompletedQuestIDs carries the identifiers of the quests already done
// there, so the client can mark checkboxes without a second request.
type LocationCompletion struct {
	LocationID        int64
	LocationName      string
	Completed         int
	Total             int
	CompletedQuestIDs []int64
}

type LeaderboardEntry struct {
	UserID         uuid.UUID
	DisplayName    string
	CompletedCount int
}

// ProgressEvent is pushed over the live feed after a completion-state
// change is accepted and persisted.
type ProgressEvent struct {
	UserID       uuid.UUID  `json:"user_id"`
	LocationName string     `json:"location_name"`
	QuestID      int64      `json:"quest_id"`
	QuestText    string     `json:"quest_text"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at"`
}
