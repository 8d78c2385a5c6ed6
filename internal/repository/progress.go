package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sidequest/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type dbProgress struct {
	ProgressID  int64      `db:"progress_id"`
	UserID      uuid.UUID  `db:"user_id"`
	QuestID     int64      `db:"quest_id"`
	Completed   bool       `db:"completed"`
	CompletedAt *time.Time `db:"completed_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type progressJoinRow struct {
	QuestID      int64      `db:"quest_id"`
	QuestText    string     `db:"text"`
	LocationName string     `db:"location_name"`
	Completed    bool       `db:"completed"`
	CompletedAt  *time.Time `db:"completed_at"`
}

type locationSummaryRow struct {
	LocationID        int64         `db:"location_id"`
	LocationName      string        `db:"name"`
	Total             int           `db:"total"`
	Completed         int           `db:"completed"`
	CompletedQuestIDs pq.Int64Array `db:"completed_quest_ids"`
}

type leaderboardRow struct {
	UserID         uuid.UUID `db:"user_id"`
	Name           string    `db:"name"`
	CompletedCount int       `db:"completed_count"`
}

func (p *dbProgress) toModel() *model.ProgressRecord {
	return &model.ProgressRecord{
		ID:          p.ProgressID,
		UserID:      p.UserID,
		QuestID:     p.QuestID,
		Completed:   p.Completed,
		CompletedAt: p.CompletedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// GetUserProgress joins the user's progress rows against quests and
// locations and folds them into the location -> quest text shape. Rows
// whose quest has been deleted simply do not join and are dropped here.
func (r *Repository) GetUserProgress(ctx context.Context, userID uuid.UUID) (model.UserProgress, error) {
	query, args, err := squirrel.
		Select(
			"q.quest_id",
			"q.text",
			"l.name AS location_name",
			"p.completed",
			"p.completed_at",
		).
		From("progress p").
		Join("quests q ON q.quest_id = p.quest_id").
		Join("locations l ON l.location_id = q.location_id").
		Where(squirrel.Eq{"p.user_id": userID}).
		OrderBy("l.location_id", "q.quest_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %w", err)
	}

	var rows []*progressJoinRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}

	progress := make(model.UserProgress)
	for _, row := range rows {
		byQuest, ok := progress[row.LocationName]
		if !ok {
			byQuest = make(map[string]model.QuestProgress)
			progress[row.LocationName] = byQuest
		}
		byQuest[row.QuestText] = model.QuestProgress{
			QuestID:     row.QuestID,
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
		}
	}

	return progress, nil
}

// GetLocationCompletion snapshots the completion boolean of every quest
// at one location for the gate. Quests the user never toggled default
// to false through the left join.
func (r *Repository) GetLocationCompletion(ctx context.Context, userID uuid.UUID, locationID int64) (map[int64]bool, error) {
	query, args, err := squirrel.
		Select(
			"q.quest_id",
			"COALESCE(p.completed, false) AS completed",
		).
		From("quests q").
		LeftJoin("progress p ON p.quest_id = q.quest_id AND p.user_id = ?", userID).
		Where(squirrel.Eq{"q.location_id": locationID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build completion snapshot query: %w", err)
	}

	var rows []struct {
		QuestID   int64 `db:"quest_id"`
		Completed bool  `db:"completed"`
	}
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion snapshot: %w", err)
	}

	completed := make(map[int64]bool, len(rows))
	for _, row := range rows {
		completed[row.QuestID] = row.Completed
	}

	return completed, nil
}

func (r *Repository) GetProgressRecord(ctx context.Context, userID uuid.UUID, questID int64) (*model.ProgressRecord, error) {
	query, args, err := squirrel.
		Select("progress_id", "user_id", "quest_id", "completed", "completed_at", "updated_at").
		From("progress").
		Where(squirrel.Eq{
			"user_id":  userID,
			"quest_id": questID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row dbProgress
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

// UpsertProgress writes the completion state for one (user, quest)
// pair. The uniqueness constraint on (user_id, quest_id) makes racing
// duplicate requests serialize into a single row, last write wins.
func (r *Repository) UpsertProgress(ctx context.Context, record *model.ProgressRecord) (*model.ProgressRecord, error) {
	query, args, err := squirrel.
		Insert("progress").
		SetMap(map[string]interface{}{
			"user_id":      record.UserID,
			"quest_id":     record.QuestID,
			"completed":    record.Completed,
			"completed_at": record.CompletedAt,
			"updated_at":   record.UpdatedAt,
		}).
		Suffix(`ON CONFLICT (user_id, quest_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
			RETURNING progress_id, user_id, quest_id, completed, completed_at, updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress upsert query: %w", err)
	}

	var row dbProgress
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) CountQuests(ctx context.Context) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("quests").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var total int
	err = r.db.GetContext(ctx, &total, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count quests: %w", err)
	}

	return total, nil
}

// CountCompleted joins against quests so progress rows referencing a
// deleted quest never inflate the user's score.
func (r *Repository) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("progress p").
		Join("quests q ON q.quest_id = p.quest_id").
		Where(squirrel.Eq{
			"p.user_id":   userID,
			"p.completed": true,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var completed int
	err = r.db.GetContext(ctx, &completed, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed quests: %w", err)
	}

	return completed, nil
}

func (r *Repository) GetLocationSummaries(ctx context.Context, userID uuid.UUID) ([]*model.LocationCompletion, error) {
	query, args, err := squirrel.
		Select(
			"l.location_id",
			"l.name",
			"COUNT(q.quest_id) AS total",
			"COUNT(*) FILTER (WHERE p.completed) AS completed",
			"array_agg(q.quest_id) FILTER (WHERE p.completed) AS completed_quest_ids",
		).
		From("locations l").
		LeftJoin("quests q ON q.location_id = l.location_id").
		LeftJoin("progress p ON p.quest_id = q.quest_id AND p.user_id = ?", userID).
		GroupBy("l.location_id", "l.name").
		OrderBy("l.location_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location summary query: %w", err)
	}

	var rows []*locationSummaryRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get location summaries: %w", err)
	}

	summaries := make([]*model.LocationCompletion, len(rows))
	for i, row := range rows {
		summaries[i] = &model.LocationCompletion{
			LocationID:        row.LocationID,
			LocationName:      row.LocationName,
			Completed:         row.Completed,
			Total:             row.Total,
			CompletedQuestIDs: row.CompletedQuestIDs,
		}
	}

	return summaries, nil
}

// GetLeaderboard counts completed quests per user, highest first. Ties
// break on user_id ascending so the ordering is deterministic. Users
// with no completed quest produce no row and are omitted.
func (r *Repository) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select(
			"u.user_id",
			"u.name",
			"COUNT(*) AS completed_count",
		).
		From("progress p").
		Join("users u ON u.user_id = p.user_id").
		Join("quests q ON q.quest_id = p.quest_id").
		Where(squirrel.Eq{"p.completed": true}).
		GroupBy("u.user_id", "u.name").
		OrderBy("completed_count DESC", "u.user_id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	var rows []*leaderboardRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LeaderboardEntry{
			UserID:         row.UserID,
			DisplayName:    row.Name,
			CompletedCount: row.CompletedCount,
		}
	}

	return entries, nil
}
