package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/repository/common"
)

// ErrItemNotFound возвращается, когда объявление не найдено.
var ErrItemNotFound = errors.New("item not found")

// ItemRepository отвечает за работу с таблицей items.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository создаёт экземпляр репозитория.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create создаёт новое объявление.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (owner_id, type, title, category, location, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		item.OwnerID, item.Type, item.Title, item.Category, item.Location, item.Description, item.ImageURL,
	).Scan(&item.ID, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("item repository: create %w", err)
	}

	return nil
}

// GetByID возвращает объявление по идентификатору.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return common.GetByID[models.Item](ctx, r.db, "items", id, ErrItemNotFound)
}

// GetByIDWithOwner возвращает объявление вместе с именем автора.
func (r *ItemRepository) GetByIDWithOwner(ctx context.Context, id uuid.UUID) (*models.ItemWithOwner, error) {
	var item models.ItemWithOwner
	query := `
		SELECT i.*, u.username AS owner_username
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1
	`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item repository: get by id with owner %w", err)
	}

	return &item, nil
}

// List возвращает объявления по фильтру и общее количество подходящих записей.
func (r *ItemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.ItemWithOwner, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	addCond := func(cond string, value interface{}) {
		where += fmt.Sprintf(" AND "+cond, argIndex)
		args = append(args, value)
		argIndex++
	}

	if filter.Type != "" {
		addCond("i.type = $%d", filter.Type)
	}
	if filter.Category != "" {
		addCond("i.category = $%d", filter.Category)
	}
	if filter.Location != "" {
		addCond("i.location ILIKE $%d", "%"+filter.Location+"%")
	}
	if filter.Status != "" {
		addCond("i.status = $%d", filter.Status)
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (i.title ILIKE $%d OR i.description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM items i` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("item repository: count %w", err)
	}

	query := `
		SELECT i.*, u.username AS owner_username
		FROM items i
		JOIN users u ON u.id = i.owner_id` + where +
		fmt.Sprintf(" ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	var items []models.ItemWithOwner
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("item repository: list %w", err)
	}

	return items, total, nil
}

// ListByOwner возвращает объявления пользователя, новые сверху.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	query := `SELECT * FROM items WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("item repository: list by owner %w", err)
	}

	return items, nil
}

// Update сохраняет изменённое объявление.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET type = $2, title = $3, category = $4, location = $5,
			description = $6, image_url = $7, status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		item.ID, item.Type, item.Title, item.Category, item.Location,
		item.Description, item.ImageURL, item.Status,
	).Scan(&item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("item repository: update %w", err)
	}

	return nil
}

// ItemCounts содержит агрегаты по объявлениям для админской статистики.
type ItemCounts struct {
	Total    int `db:"total" json:"total"`
	Active   int `db:"active" json:"active"`
	Resolved int `db:"resolved" json:"resolved"`
	Lost     int `db:"lost" json:"lost"`
	Found    int `db:"found" json:"found"`
}

// Counts возвращает агрегаты по статусам и типам одним запросом.
func (r *ItemRepository) Counts(ctx context.Context) (*ItemCounts, error) {
	var counts ItemCounts
	query := `
		SELECT COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
			COUNT(*) FILTER (WHERE type = 'lost') AS lost,
			COUNT(*) FILTER (WHERE type = 'found') AS found
		FROM items
	`
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("item repository: counts %w", err)
	}

	return &counts, nil
}

// Delete удаляет объявление; заявки по нему удаляются каскадно.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("item repository: delete %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("item repository: delete rows affected %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}

	return nil
}
