package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/pkg/apperror"
	"github.com/refind-app/refind-backend/internal/repository"
)

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil {
		item.ID = uuid.New()
		item.Status = models.ItemStatusActive
	}
	return args.Error(0)
}

func (m *mockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *mockItemRepo) GetByIDWithOwner(ctx context.Context, id uuid.UUID) (*models.ItemWithOwner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemWithOwner), args.Error(1)
}

func (m *mockItemRepo) List(ctx context.Context, filter models.ItemFilter) ([]models.ItemWithOwner, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.ItemWithOwner), args.Int(1), args.Error(2)
}

func (m *mockItemRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *mockItemRepo) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestItemService_CreateItem_Success(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()
	ownerID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

	item, err := svc.CreateItem(ctx, ownerID, CreateItemInput{
		Type:        models.ItemTypeFound,
		Title:       "  Найден рюкзак  ",
		Category:    "Bags/Wallets",
		Location:    "Парк Горького",
		Description: "Синий рюкзак с ноутбуком внутри",
	})

	assert.NoError(t, err)
	assert.Equal(t, ownerID, item.OwnerID)
	assert.Equal(t, "Найден рюкзак", item.Title)
	assert.Equal(t, models.ItemStatusActive, item.Status)
}

func TestItemService_CreateItem_InvalidType(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	_, err := svc.CreateItem(context.Background(), uuid.New(), CreateItemInput{
		Type:     "stolen",
		Title:    "Заголовок",
		Category: "Other",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestItemService_CreateItem_InvalidCategory(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	_, err := svc.CreateItem(context.Background(), uuid.New(), CreateItemInput{
		Type:     models.ItemTypeLost,
		Title:    "Заголовок",
		Category: "Furniture",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestItemService_GetItem_NotFound(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	itemID := uuid.New()
	repo.On("GetByIDWithOwner", ctx, itemID).Return(nil, repository.ErrItemNotFound)

	_, err := svc.GetItem(ctx, itemID)

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestItemService_ListItems_ClampsLimit(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(f models.ItemFilter) bool {
		return f.Limit == MaxItemPageSize && f.Offset == 0
	})).Return([]models.ItemWithOwner{}, 0, nil)

	_, _, err := svc.ListItems(ctx, models.ItemFilter{Limit: 1000, Offset: -5})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestItemService_ListItems_InvalidTypeFilter(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)

	_, _, err := svc.ListItems(context.Background(), models.ItemFilter{Type: "broken"})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestItemService_UpdateItem_NotOwner(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	item := &models.Item{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  models.ItemStatusActive,
	}
	repo.On("GetByID", ctx, item.ID).Return(item, nil)

	_, err := svc.UpdateItem(ctx, item.ID, uuid.New(), models.RoleUser, UpdateItemInput{Title: "Новый заголовок"})

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestItemService_UpdateItem_AdminAllowed(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	item := &models.Item{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  models.ItemStatusActive,
	}
	repo.On("GetByID", ctx, item.ID).Return(item, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

	updated, err := svc.UpdateItem(ctx, item.ID, uuid.New(), models.RoleAdmin, UpdateItemInput{Title: "Исправленный заголовок"})

	assert.NoError(t, err)
	assert.Equal(t, "Исправленный заголовок", updated.Title)
}

func TestItemService_UpdateItem_PartialFields(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	item := &models.Item{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Type:     models.ItemTypeLost,
		Title:    "Старый заголовок",
		Category: "Keys",
		Status:   models.ItemStatusActive,
	}
	repo.On("GetByID", ctx, item.ID).Return(item, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*models.Item")).Return(nil)

	updated, err := svc.UpdateItem(ctx, item.ID, ownerID, models.RoleUser, UpdateItemInput{
		Status: models.ItemStatusResolved,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Старый заголовок", updated.Title)
	assert.Equal(t, models.ItemStatusResolved, updated.Status)
}

func TestItemService_DeleteItem_ReturnsDeleted(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	ownerID := uuid.New()
	imageURL := "uploads/items/photo.jpg"
	item := &models.Item{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		ImageURL: &imageURL,
		Status:   models.ItemStatusActive,
	}
	repo.On("GetByID", ctx, item.ID).Return(item, nil)
	repo.On("Delete", ctx, item.ID).Return(nil)

	deleted, err := svc.DeleteItem(ctx, item.ID, ownerID, models.RoleUser)

	assert.NoError(t, err)
	if assert.NotNil(t, deleted.ImageURL) {
		assert.Equal(t, imageURL, *deleted.ImageURL)
	}
}

func TestItemService_DeleteItem_NotOwner(t *testing.T) {
	repo := new(mockItemRepo)
	svc := NewItemService(repo)
	ctx := context.Background()

	item := &models.Item{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  models.ItemStatusActive,
	}
	repo.On("GetByID", ctx, item.ID).Return(item, nil)

	_, err := svc.DeleteItem(ctx, item.ID, uuid.New(), models.RoleUser)

	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}
