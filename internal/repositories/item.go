package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

// ItemRepository caches normalized feed items. It implements
// models.Repository[*models.Item].
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates an item repository over the database.
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts an item, assigning the next sequence number.
func (r *ItemRepository) Create(item *models.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	sequence, err := NextSequence(r.db, "items")
	if err != nil {
		return err
	}
	item.Sequence = sequence

	_, err = r.db.Exec(`
		INSERT INTO items (id, sequence, kind, source, title, url, thumbnail, channel, extension, size_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ItemID, item.Sequence, string(item.Kind), item.Source, item.Title,
		item.URL, item.Thumbnail, item.Channel, item.Extension, item.SizeLabel)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Get retrieves an item by id.
func (r *ItemRepository) Get(id string) (*models.Item, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, kind, source, title, url, thumbnail, channel, extension, size_label, created_at
		FROM items WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// Update rewrites an item's mutable fields.
func (r *ItemRepository) Update(item *models.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE items SET kind = ?, source = ?, title = ?, url = ?, thumbnail = ?,
			channel = ?, extension = ?, size_label = ?
		WHERE id = ?
	`, string(item.Kind), item.Source, item.Title, item.URL, item.Thumbnail,
		item.Channel, item.Extension, item.SizeLabel, item.ItemID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return shared.ErrItemNotFound
	}
	return nil
}

// Delete removes an item by id.
func (r *ItemRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return shared.ErrItemNotFound
	}
	return nil
}

// List retrieves items matching the criteria (kind, source), ordered by
// sequence.
func (r *ItemRepository) List(criteria map[string]any) ([]*models.Item, error) {
	query := `
		SELECT id, sequence, kind, source, title, url, thumbnail, channel, extension, size_label, created_at
		FROM items
	`
	var clauses []string
	var args []any
	for _, column := range []string{"kind", "source"} {
		if value, ok := criteria[column]; ok {
			clauses = append(clauses, column+" = ?")
			args = append(args, value)
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveAll upserts a fetched page into the cache. Existing entries keep their
// sequence position.
func (r *ItemRepository) SaveAll(items []models.Item) error {
	for i := range items {
		item := items[i]
		err := r.Create(&item)
		if err == nil {
			continue
		}
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			if err := r.Update(&item); err != nil {
				return err
			}
			continue
		}
		return err
	}
	return nil
}

// Clear removes every cached item and resets the sequence.
func (r *ItemRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM items"); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := r.db.Exec("UPDATE items_sequence SET value = 0 WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to reset sequence: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (*models.Item, error) {
	var item models.Item
	var kind string
	var thumbnail, channel, extension, sizeLabel sql.NullString
	var created time.Time

	err := row.Scan(&item.ItemID, &item.Sequence, &kind, &item.Source, &item.Title,
		&item.URL, &thumbnail, &channel, &extension, &sizeLabel, &created)
	if err != nil {
		return nil, err
	}

	item.Kind = models.ItemKind(kind)
	item.Thumbnail = thumbnail.String
	item.Channel = channel.String
	item.Extension = extension.String
	item.SizeLabel = sizeLabel.String
	item.Created = created
	return &item, nil
}
