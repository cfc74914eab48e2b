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

var (
	// ErrClaimNotFound возвращается, когда заявка не найдена.
	ErrClaimNotFound = errors.New("claim not found")
	// ErrDuplicateClaim возвращается при попытке повторной заявки на ту же вещь.
	// Срабатывает на частичном уникальном индексе (item_id, claimer_id) по
	// нетерминальным статусам, поэтому гонка check-then-insert исключена.
	ErrDuplicateClaim = errors.New("active claim already exists")
	// ErrClaimNotPending возвращается при попытке перевести заявку из терминального статуса.
	ErrClaimNotPending = errors.New("claim is not pending")
)

// ClaimRepository отвечает за работу с таблицей claims.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository создаёт экземпляр репозитория.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create сохраняет новую заявку в статусе pending.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	query := `
		INSERT INTO claims (item_id, claimer_id, finder_id, request_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		claim.ItemID, claim.ClaimerID, claim.FinderID, claim.RequestMessage,
	).Scan(&claim.ID, &claim.Status, &claim.CreatedAt, &claim.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return ErrDuplicateClaim
		}
		return fmt.Errorf("claim repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	return common.GetByID[models.Claim](ctx, r.db, "claims", id, ErrClaimNotFound)
}

// GetActiveByItemAndClaimer возвращает действующую (pending или approved)
// заявку пары пользователь-вещь. Отклонённые заявки не учитываются.
func (r *ClaimRepository) GetActiveByItemAndClaimer(ctx context.Context, itemID, claimerID uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `
		SELECT * FROM claims
		WHERE item_id = $1 AND claimer_id = $2 AND status IN ('pending', 'approved')
	`
	if err := r.db.GetContext(ctx, &claim, query, itemID, claimerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("claim repository: get active by item and claimer %w", err)
	}

	return &claim, nil
}

// ListByClaimer возвращает заявки, отправленные пользователем, новые сверху.
func (r *ClaimRepository) ListByClaimer(ctx context.Context, claimerID uuid.UUID) ([]models.ClaimWithItem, error) {
	var claims []models.ClaimWithItem
	query := `
		SELECT c.*, i.title AS item_title, i.type AS item_type,
			i.category AS item_category, i.image_url AS item_image_url
		FROM claims c
		JOIN items i ON i.id = c.item_id
		WHERE c.claimer_id = $1
		ORDER BY c.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &claims, query, claimerID); err != nil {
		return nil, fmt.Errorf("claim repository: list by claimer %w", err)
	}

	return claims, nil
}

// ListByFinder возвращает заявки, полученные на вещи пользователя, новые сверху.
func (r *ClaimRepository) ListByFinder(ctx context.Context, finderID uuid.UUID) ([]models.ClaimWithItem, error) {
	var claims []models.ClaimWithItem
	query := `
		SELECT c.*, i.title AS item_title, i.type AS item_type,
			i.category AS item_category, i.image_url AS item_image_url
		FROM claims c
		JOIN items i ON i.id = c.item_id
		WHERE c.finder_id = $1
		ORDER BY c.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &claims, query, finderID); err != nil {
		return nil, fmt.Errorf("claim repository: list by finder %w", err)
	}

	return claims, nil
}

// Approve переводит заявку pending -> approved и закрывает вещь.
// Оба изменения выполняются в одной транзакции: одобренная заявка без
// закрытой вещи — недопустимое состояние.
func (r *ClaimRepository) Approve(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE claims
			SET status = 'approved', updated_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING *
		`
		if err := tx.GetContext(ctx, &claim, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrClaimNotPending
			}
			return fmt.Errorf("claim repository: approve %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE items SET status = 'resolved', updated_at = NOW()
			WHERE id = $1 AND status = 'active'
		`, claim.ItemID); err != nil {
			return fmt.Errorf("claim repository: resolve item %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &claim, nil
}

// Reject переводит заявку pending -> rejected. Вещь остаётся активной.
func (r *ClaimRepository) Reject(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `
		UPDATE claims
		SET status = 'rejected', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &claim, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClaimNotPending
		}
		return nil, fmt.Errorf("claim repository: reject %w", err)
	}

	return &claim, nil
}

// CountByStatus возвращает количество заявок в каждом статусе (для админки).
func (r *ClaimRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}
	query := `SELECT status, COUNT(*) AS count FROM claims GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("claim repository: count by status %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
