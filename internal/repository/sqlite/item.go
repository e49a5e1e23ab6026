package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/model"
	"github.com/arefin/crud-backend/internal/repository"
)

// Items returns the item repository view of the database. The user methods
// already occupy Create/GetByID/Update/Delete on *DB, so items get their own
// type over the same pool.
func (db *DB) Items() *ItemStore {
	return &ItemStore{conn: db.conn}
}

// ItemStore implements repository.ItemRepository on the shared pool.
type ItemStore struct {
	conn *sql.DB
}

var _ repository.ItemRepository = (*ItemStore)(nil)

func (s *ItemStore) Create(ctx context.Context, item *model.Item) error {
	item.ID = xid.New().String()
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO items (id, title, description, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Title,
		item.Description,
		item.OwnerID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting item: %w", err)
	}

	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items WHERE id = ?`,
		id,
	).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.OwnerID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("item", id)
		}
		return nil, fmt.Errorf("sqlite: getting item %s: %w", id, err)
	}

	return &item, nil
}

func (s *ItemStore) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Item, error) {
	limit, offset := clampPage(opts)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items
		 WHERE owner_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	items := make([]model.Item, 0, limit)
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(
			&item.ID, &item.Title, &item.Description, &item.OwnerID,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating items: %w", err)
	}

	return items, nil
}

func (s *ItemStore) Update(ctx context.Context, item *model.Item) error {
	item.UpdatedAt = time.Now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE items
		 SET title = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		item.Title,
		item.Description,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating item %s: %w", item.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update result for item %s: %w", item.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("item", item.ID)
	}

	return nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting item %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete result for item %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("item", id)
	}

	return nil
}
