package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/refind-app/refind-backend/internal/dto"
	"github.com/refind-app/refind-backend/internal/logger"
	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/pkg/apperror"
	"github.com/refind-app/refind-backend/internal/repository"
	"github.com/refind-app/refind-backend/internal/validation"
)

// ClaimRepository описывает контракт хранилища заявок.
// Уникальность активной пары (item_id, claimer_id) обязана обеспечиваться
// на уровне хранилища: проверка в сервисе нужна только для понятных сообщений.
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	GetActiveByItemAndClaimer(ctx context.Context, itemID, claimerID uuid.UUID) (*models.Claim, error)
	ListByClaimer(ctx context.Context, claimerID uuid.UUID) ([]models.ClaimWithItem, error)
	ListByFinder(ctx context.Context, finderID uuid.UUID) ([]models.ClaimWithItem, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Claim, error)
}

// ItemDirectory описывает зависимость движка заявок от хранилища объявлений.
type ItemDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// UserDirectory отдаёт контактные данные пользователей.
type UserDirectory interface {
	GetContactInfo(ctx context.Context, id uuid.UUID) (*models.ContactInfo, error)
	GetContactInfoByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ContactInfo, error)
}

// EventBroadcaster отправляет событие пользователю (WebSocket hub).
type EventBroadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// ClaimService реализует жизненный цикл заявок: создание с проверками,
// переходы pending -> approved/rejected и раскрытие контактов после одобрения.
type ClaimService struct {
	claims ClaimRepository
	items  ItemDirectory
	users  UserDirectory
	hub    EventBroadcaster
}

// NewClaimService создаёт сервис заявок.
func NewClaimService(claims ClaimRepository, items ItemDirectory, users UserDirectory) *ClaimService {
	return &ClaimService{
		claims: claims,
		items:  items,
		users:  users,
	}
}

// SetHub подключает рассылку событий о заявках.
func (s *ClaimService) SetHub(hub EventBroadcaster) {
	s.hub = hub
}

// CreateClaim создаёт заявку на вещь. Проверки выполняются по порядку,
// первая ошибка прерывает обработку.
func (s *ClaimService) CreateClaim(ctx context.Context, itemID, claimerID uuid.UUID, message string) (*models.Claim, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить объявление")
	}

	if item.Status != models.ItemStatusActive {
		return nil, apperror.New(apperror.ErrCodeConflict, "эта вещь уже возвращена владельцу")
	}

	if item.OwnerID == claimerID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя подать заявку на собственное объявление")
	}

	existing, err := s.claims.GetActiveByItemAndClaimer(ctx, itemID, claimerID)
	if err != nil && !errors.Is(err, repository.ErrClaimNotFound) {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить существующие заявки")
	}
	if existing != nil {
		if existing.Status == models.ClaimStatusApproved {
			return nil, apperror.New(apperror.ErrCodeConflict, "ваша заявка на эту вещь уже одобрена")
		}
		return nil, apperror.New(apperror.ErrCodeConflict, "вы уже отправили заявку на эту вещь")
	}

	if err := validation.ValidateClaimMessage(message); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	claim := &models.Claim{
		ItemID:         itemID,
		ClaimerID:      claimerID,
		FinderID:       item.OwnerID, // снимок владельца на момент подачи
		RequestMessage: message,
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		// Конкурирующая заявка успела раньше — частичный уникальный индекс
		// закрыл гонку, повторных попыток не делаем.
		if errors.Is(err, repository.ErrDuplicateClaim) {
			return nil, apperror.New(apperror.ErrCodeConflict, "вы уже отправили заявку на эту вещь")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку")
	}

	s.notify(claim.FinderID, models.EventClaimReceived, claim)

	return claim, nil
}

// ApproveClaim одобряет заявку. Разрешено только нашедшему; заявка обязана
// быть в статусе pending. Вещь закрывается в той же транзакции хранилища.
func (s *ClaimService) ApproveClaim(ctx context.Context, claimID, actorID uuid.UUID) (*dto.ClaimView, error) {
	claim, err := s.getPendingForActor(ctx, claimID, actorID)
	if err != nil {
		return nil, err
	}

	approved, err := s.claims.Approve(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotPending) {
			return nil, apperror.New(apperror.ErrCodeConflict, "заявка уже обработана")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось одобрить заявку")
	}

	s.notify(claim.ClaimerID, models.EventClaimApproved, approved)

	// Нашедший видит полные контакты заявителя, чтобы договориться о передаче.
	view := claimView(approved)
	claimer, err := s.users.GetContactInfo(ctx, approved.ClaimerID)
	if err == nil {
		view.Claimer = FullContact(claimer)
	}

	return view, nil
}

// RejectClaim отклоняет заявку. Объявление остаётся активным, и тот же
// пользователь может подать новую заявку позже.
func (s *ClaimService) RejectClaim(ctx context.Context, claimID, actorID uuid.UUID) (*models.Claim, error) {
	if _, err := s.getPendingForActor(ctx, claimID, actorID); err != nil {
		return nil, err
	}

	rejected, err := s.claims.Reject(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotPending) {
			return nil, apperror.New(apperror.ErrCodeConflict, "заявка уже обработана")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить заявку")
	}

	s.notify(rejected.ClaimerID, models.EventClaimRejected, rejected)

	return rejected, nil
}

// ListSent возвращает отправленные пользователем заявки. Контакты нашедшего
// раскрываются только в одобренных заявках.
func (s *ClaimService) ListSent(ctx context.Context, userID uuid.UUID) ([]dto.ClaimView, error) {
	claims, err := s.claims.ListByClaimer(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить заявки")
	}

	contacts, err := s.contactsFor(ctx, claims, func(c *models.ClaimWithItem) uuid.UUID { return c.FinderID })
	if err != nil {
		return nil, err
	}

	views := make([]dto.ClaimView, 0, len(claims))
	for i := range claims {
		finder := contactOrNil(contacts, claims[i].FinderID)
		views = append(views, ProjectForClaimant(&claims[i], finder))
	}

	return views, nil
}

// ListReceived возвращает заявки на вещи пользователя. Контакты заявителя
// видны всегда: нашедшему нужно оценить заявку до одобрения. Асимметрия
// с ListSent намеренная.
func (s *ClaimService) ListReceived(ctx context.Context, userID uuid.UUID) ([]dto.ClaimView, error) {
	claims, err := s.claims.ListByFinder(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить заявки")
	}

	contacts, err := s.contactsFor(ctx, claims, func(c *models.ClaimWithItem) uuid.UUID { return c.ClaimerID })
	if err != nil {
		return nil, err
	}

	views := make([]dto.ClaimView, 0, len(claims))
	for i := range claims {
		claimer := contactOrNil(contacts, claims[i].ClaimerID)
		views = append(views, ProjectForFinder(&claims[i], claimer))
	}

	return views, nil
}

// getPendingForActor загружает заявку и проверяет права и статус
// перед approve/reject.
func (s *ClaimService) getPendingForActor(ctx context.Context, claimID, actorID uuid.UUID) (*models.Claim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, repository.ErrClaimNotFound) {
			return nil, apperror.ErrClaimNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить заявку")
	}

	if claim.FinderID != actorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "управлять заявкой может только автор объявления")
	}

	if claim.Status != models.ClaimStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "заявка уже обработана")
	}

	return claim, nil
}

// contactsFor собирает контакты контрагентов одним запросом.
func (s *ClaimService) contactsFor(ctx context.Context, claims []models.ClaimWithItem, pick func(*models.ClaimWithItem) uuid.UUID) (map[uuid.UUID]models.ContactInfo, error) {
	seen := make(map[uuid.UUID]struct{}, len(claims))
	ids := make([]uuid.UUID, 0, len(claims))
	for i := range claims {
		id := pick(&claims[i])
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	contacts, err := s.users.GetContactInfoByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить контакты")
	}

	return contacts, nil
}

// notify отправляет событие через hub, если он подключён. Ошибки доставки
// не влияют на результат операции.
func (s *ClaimService) notify(userID uuid.UUID, event string, data any) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
		}).WithError(err).Warn("claim service: не удалось отправить событие")
	}
}

func contactOrNil(contacts map[uuid.UUID]models.ContactInfo, id uuid.UUID) *models.ContactInfo {
	if c, ok := contacts[id]; ok {
		return &c
	}
	return nil
}
