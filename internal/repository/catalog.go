package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sidequest/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type dbLocation struct {
	LocationID  int64     `db:"location_id"`
	Name        string    `db:"name"`
	Type        string    `db:"type"`
	XCoordinate float64   `db:"x_coordinate"`
	YCoordinate float64   `db:"y_coordinate"`
	CreatedAt   time.Time `db:"created_at"`
}

type dbQuest struct {
	QuestID    int64  `db:"quest_id"`
	LocationID int64  `db:"location_id"`
	Text       string `db:"text"`
	Dependency *int64 `db:"dependency"`
}

// toModel is the single normalization point between relational rows and
// the domain shape. Nothing outside this package sees db tags.
func (l *dbLocation) toModel() *model.Location {
	return &model.Location{
		ID:        l.LocationID,
		Name:      l.Name,
		Type:      l.Type,
		X:         l.XCoordinate,
		Y:         l.YCoordinate,
		CreatedAt: l.CreatedAt,
	}
}

func (q *dbQuest) toModel() *model.Quest {
	return &model.Quest{
		ID:         q.QuestID,
		LocationID: q.LocationID,
		Text:       q.Text,
		Dependency: q.Dependency,
	}
}

func (r *Repository) ListLocations(ctx context.Context) ([]*model.Location, error) {
	query, args, err := squirrel.
		Select("location_id", "name", "type", "x_coordinate", "y_coordinate", "created_at").
		From("locations").
		OrderBy("location_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build locations query: %w", err)
	}

	var rows []*dbLocation
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	locations := make([]*model.Location, len(rows))
	for i, row := range rows {
		locations[i] = row.toModel()
	}

	return locations, nil
}

func (r *Repository) GetLocationByName(ctx context.Context, name string) (*model.Location, error) {
	query, args, err := squirrel.
		Select("location_id", "name", "type", "x_coordinate", "y_coordinate", "created_at").
		From("locations").
		Where(squirrel.Eq{"name": name}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row dbLocation
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

func (r *Repository) CreateLocation(ctx context.Context, location *model.Location) (*model.Location, error) {
	query, args, err := squirrel.
		Insert("locations").
		SetMap(map[string]interface{}{
			"name":         location.Name,
			"type":         location.Type,
			"x_coordinate": location.X,
			"y_coordinate": location.Y,
			"created_at":   time.Now().UTC(),
		}).
		Suffix("RETURNING location_id, name, type, x_coordinate, y_coordinate, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location insert query: %w", err)
	}

	var row dbLocation
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) UpdateLocation(ctx context.Context, locationID int64, updates map[string]interface{}) (*model.Location, error) {
	query, args, err := squirrel.
		Update("locations").
		SetMap(updates).
		Where(squirrel.Eq{"location_id": locationID}).
		Suffix("RETURNING location_id, name, type, x_coordinate, y_coordinate, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location update query: %w", err)
	}

	var row dbLocation
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	return row.toModel(), nil
}

// DeleteLocation removes a location with its quests and any progress
// recorded against them, in one transaction.
func (r *Repository) DeleteLocation(ctx context.Context, locationID int64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		progressQuery, progressArgs, err := squirrel.
			Delete("progress").
			Where("quest_id IN (SELECT quest_id FROM quests WHERE location_id = ?)", locationID).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build progress delete query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, progressQuery, progressArgs...); err != nil {
			return fmt.Errorf("failed to delete location progress: %w", err)
		}

		questsQuery, questsArgs, err := squirrel.
			Delete("quests").
			Where(squirrel.Eq{"location_id": locationID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quests delete query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, questsQuery, questsArgs...); err != nil {
			return fmt.Errorf("failed to delete location quests: %w", err)
		}

		locationQuery, locationArgs, err := squirrel.
			Delete("locations").
			Where(squirrel.Eq{"location_id": locationID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build location delete query: %w", err)
		}

		result, err := tx.ExecContext(ctx, locationQuery, locationArgs...)
		if err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}

		return nil
	})
}

func (r *Repository) ListQuests(ctx context.Context) ([]*model.Quest, error) {
	query, args, err := squirrel.
		Select("quest_id", "location_id", "text", "dependency").
		From("quests").
		OrderBy("location_id", "quest_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quests query: %w", err)
	}

	var rows []*dbQuest
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	quests := make([]*model.Quest, len(rows))
	for i, row := range rows {
		quests[i] = row.toModel()
	}

	return quests, nil
}

func (r *Repository) GetQuestByID(ctx context.Context, questID int64) (*model.Quest, error) {
	query, args, err := squirrel.
		Select("quest_id", "location_id", "text", "dependency").
		From("quests").
		Where(squirrel.Eq{"quest_id": questID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row dbQuest
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

// GetQuestsByLocation returns the location's quests in stable id order.
// The order is what the dependency gate and the map UI both key off.
func (r *Repository) GetQuestsByLocation(ctx context.Context, locationID int64) ([]*model.Quest, error) {
	query, args, err := squirrel.
		Select("quest_id", "location_id", "text", "dependency").
		From("quests").
		Where(squirrel.Eq{"location_id": locationID}).
		OrderBy("quest_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build location quests query: %w", err)
	}

	var rows []*dbQuest
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get location quests: %w", err)
	}

	quests := make([]*model.Quest, len(rows))
	for i, row := range rows {
		quests[i] = row.toModel()
	}

	return quests, nil
}

func (r *Repository) CreateQuest(ctx context.Context, quest *model.Quest) (*model.Quest, error) {
	query, args, err := squirrel.
		Insert("quests").
		SetMap(map[string]interface{}{
			"location_id": quest.LocationID,
			"text":        quest.Text,
			"dependency":  quest.Dependency,
		}).
		Suffix("RETURNING quest_id, location_id, text, dependency").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quest insert query: %w", err)
	}

	var row dbQuest
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quest: %w", err)
	}

	return row.toModel(), nil
}

// UpdateQuest writes the full quest row. When clearDependents is set,
// quests pointing at this one lose their dependency first; callers use
// that on location moves so no reference ever crosses locations.
func (r *Repository) UpdateQuest(ctx context.Context, quest *model.Quest, clearDependents bool) (*model.Quest, error) {
	var updated dbQuest

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if clearDependents {
			clearQuery, clearArgs, err := squirrel.
				Update("quests").
				Set("dependency", nil).
				Where(squirrel.Eq{"dependency": quest.ID}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build dependents clear query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
				return fmt.Errorf("failed to clear dependents: %w", err)
			}
		}

		query, args, err := squirrel.
			Update("quests").
			SetMap(map[string]interface{}{
				"location_id": quest.LocationID,
				"text":        quest.Text,
				"dependency":  quest.Dependency,
			}).
			Where(squirrel.Eq{"quest_id": quest.ID}).
			Suffix("RETURNING quest_id, location_id, text, dependency").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quest update query: %w", err)
		}

		err = tx.GetContext(ctx, &updated, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to update quest: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated.toModel(), nil
}

// DeleteQuest clears the dependency of any quest chained onto this one,
// drops the quest's progress rows, then removes the quest itself.
func (r *Repository) DeleteQuest(ctx context.Context, questID int64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		clearQuery, clearArgs, err := squirrel.
			Update("quests").
			Set("dependency", nil).
			Where(squirrel.Eq{"dependency": questID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build dependents clear query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
			return fmt.Errorf("failed to clear dependents: %w", err)
		}

		progressQuery, progressArgs, err := squirrel.
			Delete("progress").
			Where(squirrel.Eq{"quest_id": questID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build progress delete query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, progressQuery, progressArgs...); err != nil {
			return fmt.Errorf("failed to delete quest progress: %w", err)
		}

		questQuery, questArgs, err := squirrel.
			Delete("quests").
			Where(squirrel.Eq{"quest_id": questID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build quest delete query: %w", err)
		}

		result, err := tx.ExecContext(ctx, questQuery, questArgs...)
		if err != nil {
			return fmt.Errorf("failed to delete quest: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}

		return nil
	})
}
