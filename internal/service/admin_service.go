package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/pkg/apperror"
	"github.com/refind-app/refind-backend/internal/repository"
)

// AdminUserRepository описывает операции над пользователями, доступные администратору.
type AdminUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
	DeleteSessionsByUser(ctx context.Context, userID uuid.UUID) error
	CountUsers(ctx context.Context) (total int, banned int, err error)
}

// AdminItemRepository описывает операции над объявлениями для админки.
type AdminItemRepository interface {
	Counts(ctx context.Context) (*repository.ItemCounts, error)
}

// ClaimCounter отдаёт агрегаты по заявкам.
type ClaimCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// AdminService реализует административные операции: статистика,
// блокировка пользователей, модерация объявлений.
type AdminService struct {
	users  AdminUserRepository
	items  AdminItemRepository
	claims ClaimCounter
}

// NewAdminService создаёт сервис администратора.
func NewAdminService(users AdminUserRepository, items AdminItemRepository, claims ClaimCounter) *AdminService {
	return &AdminService{
		users:  users,
		items:  items,
		claims: claims,
	}
}

// Stats сводная статистика платформы.
type Stats struct {
	UsersTotal  int                    `json:"users_total"`
	UsersBanned int                    `json:"users_banned"`
	Items       *repository.ItemCounts `json:"items"`
	Claims      map[string]int         `json:"claims"`
}

// GetStats собирает сводную статистику.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	usersTotal, usersBanned, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать пользователей")
	}

	itemCounts, err := s.items.Counts(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать объявления")
	}

	claimCounts, err := s.claims.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки")
	}

	return &Stats{
		UsersTotal:  usersTotal,
		UsersBanned: usersBanned,
		Items:       itemCounts,
		Claims:      claimCounts,
	}, nil
}

// ListUsers возвращает страницу пользователей.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить пользователей")
	}

	return users, nil
}

// SetUserBanned блокирует или разблокирует пользователя.
// При блокировке все refresh сессии пользователя закрываются.
func (s *AdminService) SetUserBanned(ctx context.Context, userID, actorID uuid.UUID, banned bool) error {
	if userID == actorID {
		return apperror.New(apperror.ErrCodeValidation, "нельзя заблокировать самого себя")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить пользователя")
	}

	if user.Role == models.RoleAdmin {
		return apperror.New(apperror.ErrCodeForbidden, "нельзя заблокировать администратора")
	}

	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось изменить статус блокировки")
	}

	if banned {
		if err := s.users.DeleteSessionsByUser(ctx, userID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть сессии пользователя")
		}
	}

	return nil
}
