package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/repository/common"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// UserRepository отвечает за работу с таблицами users и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_banned, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Phone, user.Role,
	).Scan(&user.ID, &user.IsBanned, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "email", email, ErrUserNotFound)
}

// GetByUsername возвращает пользователя по имени.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "username", username, ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// GetContactInfo возвращает контактные данные пользователя.
func (r *UserRepository) GetContactInfo(ctx context.Context, id uuid.UUID) (*models.ContactInfo, error) {
	var contact models.ContactInfo
	query := `SELECT id, username, email, phone FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &contact, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get contact info %w", err)
	}

	return &contact, nil
}

// GetContactInfoByIDs возвращает контакты сразу для набора пользователей.
// Один запрос вместо N — списки заявок подтягивают контакты пачкой.
func (r *UserRepository) GetContactInfoByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ContactInfo, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.ContactInfo{}, nil
	}

	var contacts []models.ContactInfo
	query := `SELECT id, username, email, phone FROM users WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &contacts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("user repository: get contact info by ids %w", err)
	}

	result := make(map[uuid.UUID]models.ContactInfo, len(contacts))
	for _, c := range contacts {
		result[c.ID] = c
	}

	return result, nil
}

// UpdateProfile обновляет имя и телефон пользователя.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $2, phone = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, user.ID, user.Username, user.Phone).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}

	return nil
}

// SetBanned устанавливает флаг блокировки пользователя.
func (r *UserRepository) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_banned = $2, updated_at = NOW() WHERE id = $1
	`, id, banned)
	if err != nil {
		return fmt.Errorf("user repository: set banned %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: set banned rows affected %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}

	return nil
}

// List возвращает пользователей с пагинацией (для админки).
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT id, username, email, password_hash, phone, role, is_banned, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}

	return users, nil
}

// CountUsers возвращает количество обычных пользователей и заблокированных.
func (r *UserRepository) CountUsers(ctx context.Context) (total int, banned int, err error) {
	row := struct {
		Total  int `db:"total"`
		Banned int `db:"banned"`
	}{}
	query := `
		SELECT COUNT(*) FILTER (WHERE role = 'user') AS total,
			COUNT(*) FILTER (WHERE is_banned) AS banned
		FROM users
	`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, fmt.Errorf("user repository: count users %w", err)
	}

	return row.Total, row.Banned, nil
}

// CreateSession сохраняет refresh сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// DeleteSessionsByUser удаляет все сессии пользователя (используется при блокировке).
func (r *UserRepository) DeleteSessionsByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: delete sessions by user %w", err)
	}
	return nil
}
