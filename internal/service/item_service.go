package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/pkg/apperror"
	"github.com/refind-app/refind-backend/internal/repository"
	"github.com/refind-app/refind-backend/internal/validation"
)

// Пагинация списков объявлений.
const (
	DefaultItemPageSize = 20
	MaxItemPageSize     = 100
)

// ItemRepository описывает контракт хранилища объявлений.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByIDWithOwner(ctx context.Context, id uuid.UUID) (*models.ItemWithOwner, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.ItemWithOwner, int, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemService реализует бизнес-логику объявлений о потерянных и найденных вещах.
type ItemService struct {
	repo ItemRepository
}

// NewItemService создаёт сервис объявлений.
func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// CreateItemInput содержит данные нового объявления.
type CreateItemInput struct {
	Type        string
	Title       string
	Category    string
	Location    string
	Description string
	ImageURL    *string
}

// UpdateItemInput содержит изменяемые поля объявления.
// Пустые строки означают «не менять».
type UpdateItemInput struct {
	Type        string
	Title       string
	Category    string
	Location    string
	Description string
	Status      string
}

// CreateItem создаёт объявление.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, in CreateItemInput) (*models.Item, error) {
	if err := validation.ValidateItemType(in.Type); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateItemTitle(in.Title); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateItemCategory(in.Category); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateItemLocation(in.Location); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateItemDescription(in.Description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	item := &models.Item{
		OwnerID:     ownerID,
		Type:        in.Type,
		Title:       strings.TrimSpace(in.Title),
		Category:    in.Category,
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    in.ImageURL,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать объявление")
	}

	return item, nil
}

// GetItem возвращает объявление с именем автора.
// Контакты автора здесь не отдаются: они раскрываются только через
// одобренную заявку.
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.ItemWithOwner, error) {
	item, err := s.repo.GetByIDWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить объявление")
	}

	return item, nil
}

// ListItems возвращает страницу объявлений по фильтру и общее количество.
func (s *ItemService) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.ItemWithOwner, int, error) {
	if filter.Type != "" {
		if err := validation.ValidateItemType(filter.Type); err != nil {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}
	if filter.Status != "" {
		if err := validation.ValidateItemStatus(filter.Status); err != nil {
			return nil, 0, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	if filter.Limit <= 0 {
		filter.Limit = DefaultItemPageSize
	}
	if filter.Limit > MaxItemPageSize {
		filter.Limit = MaxItemPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить объявления")
	}

	return items, total, nil
}

// ListMyItems возвращает объявления пользователя.
func (s *ItemService) ListMyItems(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить объявления")
	}

	return items, nil
}

// UpdateItem меняет объявление. Разрешено владельцу и администратору.
func (s *ItemService) UpdateItem(ctx context.Context, itemID, actorID uuid.UUID, actorRole string, in UpdateItemInput) (*models.Item, error) {
	item, err := s.getForActor(ctx, itemID, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	if in.Type != "" {
		if err := validation.ValidateItemType(in.Type); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		item.Type = in.Type
	}
	if in.Title != "" {
		if err := validation.ValidateItemTitle(in.Title); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		item.Title = strings.TrimSpace(in.Title)
	}
	if in.Category != "" {
		if err := validation.ValidateItemCategory(in.Category); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		item.Category = in.Category
	}
	if in.Location != "" {
		if err := validation.ValidateItemLocation(in.Location); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		item.Location = strings.TrimSpace(in.Location)
	}
	if in.Description != "" {
		if err := validation.ValidateItemDescription(in.Description); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		item.Description = strings.TrimSpace(in.Description)
	}
	if in.Status != "" {
		if err := validation.ValidateItemStatus(in.Status); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		item.Status = in.Status
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить объявление")
	}

	return item, nil
}

// SetItemImage сохраняет путь к изображению объявления.
func (s *ItemService) SetItemImage(ctx context.Context, itemID, actorID uuid.UUID, actorRole string, imageURL *string) (*models.Item, error) {
	item, err := s.getForActor(ctx, itemID, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	item.ImageURL = imageURL
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить объявление")
	}

	return item, nil
}

// DeleteItem удаляет объявление и возвращает удалённую запись,
// чтобы вызывающий мог убрать файл изображения.
func (s *ItemService) DeleteItem(ctx context.Context, itemID, actorID uuid.UUID, actorRole string) (*models.Item, error) {
	item, err := s.getForActor(ctx, itemID, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить объявление")
	}

	return item, nil
}

// getForActor загружает объявление и проверяет права на изменение.
func (s *ItemService) getForActor(ctx context.Context, itemID, actorID uuid.UUID, actorRole string) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить объявление")
	}

	if item.OwnerID != actorID && actorRole != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "изменять объявление может только его автор")
	}

	return item, nil
}
