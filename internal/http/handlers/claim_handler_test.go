package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/repository"
	"github.com/refind-app/refind-backend/internal/service"
)

// fakeClaimStore реализует service.ClaimRepository поверх карты в памяти.
type fakeClaimStore struct {
	claims map[uuid.UUID]*models.Claim
	items  map[uuid.UUID]*models.Item
}

func newFakeClaimStore() *fakeClaimStore {
	return &fakeClaimStore{
		claims: make(map[uuid.UUID]*models.Claim),
		items:  make(map[uuid.UUID]*models.Item),
	}
}

func (f *fakeClaimStore) Create(ctx context.Context, claim *models.Claim) error {
	for _, c := range f.claims {
		if c.ItemID == claim.ItemID && c.ClaimerID == claim.ClaimerID && c.IsActive() {
			return repository.ErrDuplicateClaim
		}
	}
	claim.ID = uuid.New()
	claim.Status = models.ClaimStatusPending
	f.claims[claim.ID] = claim
	return nil
}

func (f *fakeClaimStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	if c, ok := f.claims[id]; ok {
		return c, nil
	}
	return nil, repository.ErrClaimNotFound
}

func (f *fakeClaimStore) GetActiveByItemAndClaimer(ctx context.Context, itemID, claimerID uuid.UUID) (*models.Claim, error) {
	for _, c := range f.claims {
		if c.ItemID == itemID && c.ClaimerID == claimerID && c.IsActive() {
			return c, nil
		}
	}
	return nil, repository.ErrClaimNotFound
}

func (f *fakeClaimStore) listFor(match func(*models.Claim) bool) []models.ClaimWithItem {
	var out []models.ClaimWithItem
	for _, c := range f.claims {
		if !match(c) {
			continue
		}
		entry := models.ClaimWithItem{Claim: *c}
		if item, ok := f.items[c.ItemID]; ok {
			entry.ItemTitle = item.Title
			entry.ItemType = item.Type
			entry.ItemCategory = item.Category
		}
		out = append(out, entry)
	}
	return out
}

func (f *fakeClaimStore) ListByClaimer(ctx context.Context, claimerID uuid.UUID) ([]models.ClaimWithItem, error) {
	return f.listFor(func(c *models.Claim) bool { return c.ClaimerID == claimerID }), nil
}

func (f *fakeClaimStore) ListByFinder(ctx context.Context, finderID uuid.UUID) ([]models.ClaimWithItem, error) {
	return f.listFor(func(c *models.Claim) bool { return c.FinderID == finderID }), nil
}

func (f *fakeClaimStore) Approve(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	c, ok := f.claims[id]
	if !ok {
		return nil, repository.ErrClaimNotFound
	}
	if c.Status != models.ClaimStatusPending {
		return nil, repository.ErrClaimNotPending
	}
	c.Status = models.ClaimStatusApproved
	if item, ok := f.items[c.ItemID]; ok {
		item.Status = models.ItemStatusResolved
	}
	return c, nil
}

func (f *fakeClaimStore) Reject(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	c, ok := f.claims[id]
	if !ok {
		return nil, repository.ErrClaimNotFound
	}
	if c.Status != models.ClaimStatusPending {
		return nil, repository.ErrClaimNotPending
	}
	c.Status = models.ClaimStatusRejected
	return c, nil
}

// fakeItemDirectory реализует service.ItemDirectory.
type fakeItemDirectory struct {
	store *fakeClaimStore
}

func (f *fakeItemDirectory) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if item, ok := f.store.items[id]; ok {
		return item, nil
	}
	return nil, repository.ErrItemNotFound
}

// fakeUserDirectory реализует service.UserDirectory.
type fakeUserDirectory struct {
	contacts map[uuid.UUID]models.ContactInfo
}

func (f *fakeUserDirectory) GetContactInfo(ctx context.Context, id uuid.UUID) (*models.ContactInfo, error) {
	if c, ok := f.contacts[id]; ok {
		return &c, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserDirectory) GetContactInfoByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ContactInfo, error) {
	out := make(map[uuid.UUID]models.ContactInfo, len(ids))
	for _, id := range ids {
		if c, ok := f.contacts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type claimTestEnv struct {
	router *gin.Engine
	store  *fakeClaimStore
	users  *fakeUserDirectory
}

func newClaimTestEnv(userID uuid.UUID) *claimTestEnv {
	gin.SetMode(gin.TestMode)

	store := newFakeClaimStore()
	users := &fakeUserDirectory{contacts: make(map[uuid.UUID]models.ContactInfo)}
	svc := service.NewClaimService(store, &fakeItemDirectory{store: store}, users)
	handler := NewClaimHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/claims", handler.Create)
	r.GET("/claims/sent", handler.ListSent)
	r.GET("/claims/received", handler.ListReceived)
	r.PUT("/claims/:id/approve", handler.Approve)
	r.PUT("/claims/:id/reject", handler.Reject)

	return &claimTestEnv{router: r, store: store, users: users}
}

func (e *claimTestEnv) addItem(ownerID uuid.UUID) *models.Item {
	item := &models.Item{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Type:     models.ItemTypeFound,
		Title:    "Найден кошелёк",
		Category: "Bags/Wallets",
		Status:   models.ItemStatusActive,
	}
	e.store.items[item.ID] = item
	return item
}

func (e *claimTestEnv) addContact(id uuid.UUID, username, email string) {
	e.users.contacts[id] = models.ContactInfo{ID: id, Username: username, Email: email}
}

func createClaimRequest(itemID uuid.UUID, message string) *http.Request {
	body, _ := json.Marshal(map[string]string{
		"item_id":         itemID.String(),
		"request_message": message,
	})
	req, _ := http.NewRequest("POST", "/claims", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestClaimHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ClaimHandler{claims: nil}
	r.POST("/claims", handler.Create)

	req := createClaimRequest(uuid.New(), "Это моя вещь")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimHandler_Approve_InvalidClaimID(t *testing.T) {
	env := newClaimTestEnv(uuid.New())

	req, _ := http.NewRequest("PUT", "/claims/invalid-uuid/approve", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_Create_Success(t *testing.T) {
	claimerID := uuid.New()
	env := newClaimTestEnv(claimerID)
	item := env.addItem(uuid.New())

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, createClaimRequest(item.ID, "Внутри студенческий билет на моё имя"))

	assert.Equal(t, http.StatusCreated, w.Code)

	var claim models.Claim
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.Equal(t, item.OwnerID, claim.FinderID)
}

func TestClaimHandler_Create_ItemNotFound(t *testing.T) {
	env := newClaimTestEnv(uuid.New())

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, createClaimRequest(uuid.New(), "Это моя вещь"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClaimHandler_Create_OwnItem(t *testing.T) {
	ownerID := uuid.New()
	env := newClaimTestEnv(ownerID)
	item := env.addItem(ownerID)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, createClaimRequest(item.ID, "Это моя вещь"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_Create_Duplicate(t *testing.T) {
	claimerID := uuid.New()
	env := newClaimTestEnv(claimerID)
	item := env.addItem(uuid.New())

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, createClaimRequest(item.ID, "Первая заявка"))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, createClaimRequest(item.ID, "Вторая заявка"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClaimHandler_ApproveFlow_RevealsFinderContact(t *testing.T) {
	claimerID := uuid.New()
	finderID := uuid.New()

	// Заявитель подаёт заявку.
	claimerEnv := newClaimTestEnv(claimerID)
	item := claimerEnv.addItem(finderID)
	claimerEnv.addContact(finderID, "ivan", "ivan@example.com")
	claimerEnv.addContact(claimerID, "maria", "maria@example.com")

	w := httptest.NewRecorder()
	claimerEnv.router.ServeHTTP(w, createClaimRequest(item.ID, "Уронил на остановке"))
	assert.Equal(t, http.StatusCreated, w.Code)

	var claim models.Claim
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &claim))

	// До одобрения контакты нашедшего скрыты.
	w = httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/claims/sent", nil)
	claimerEnv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var sent struct {
		Claims []map[string]json.RawMessage `json:"claims"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	if assert.Len(t, sent.Claims, 1) {
		var finder map[string]any
		assert.NoError(t, json.Unmarshal(sent.Claims[0]["finder"], &finder))
		_, hasEmail := finder["email"]
		assert.False(t, hasEmail)
	}

	// Одобрить может только нашедший, не заявитель.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/claims/"+claim.ID.String()+"/approve", nil)
	claimerEnv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Одобряем от имени нашедшего напрямую в общем хранилище.
	_, err := claimerEnv.store.Approve(context.Background(), claim.ID)
	assert.NoError(t, err)

	// После одобрения контакты нашедшего раскрыты.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/claims/sent", nil)
	claimerEnv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	if assert.Len(t, sent.Claims, 1) {
		var finder map[string]any
		assert.NoError(t, json.Unmarshal(sent.Claims[0]["finder"], &finder))
		assert.Equal(t, "ivan@example.com", finder["email"])
	}
}

func TestClaimHandler_Approve_Success(t *testing.T) {
	finderID := uuid.New()
	claimerID := uuid.New()
	env := newClaimTestEnv(finderID)
	item := env.addItem(finderID)
	env.addContact(claimerID, "maria", "maria@example.com")

	claim := &models.Claim{
		ItemID:         item.ID,
		ClaimerID:      claimerID,
		FinderID:       finderID,
		RequestMessage: "Это мой кошелёк",
	}
	assert.NoError(t, env.store.Create(context.Background(), claim))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/claims/"+claim.ID.String()+"/approve", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var view map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, models.ClaimStatusApproved, view["status"])

	claimer, ok := view["claimer"].(map[string]any)
	if assert.True(t, ok) {
		assert.Equal(t, "maria@example.com", claimer["email"])
	}

	// Вещь закрыта вместе с одобрением.
	assert.Equal(t, models.ItemStatusResolved, env.store.items[item.ID].Status)
}

func TestClaimHandler_Reject_NotPending(t *testing.T) {
	finderID := uuid.New()
	env := newClaimTestEnv(finderID)
	item := env.addItem(finderID)

	claim := &models.Claim{
		ItemID:         item.ID,
		ClaimerID:      uuid.New(),
		FinderID:       finderID,
		RequestMessage: "Это моя вещь",
	}
	assert.NoError(t, env.store.Create(context.Background(), claim))
	_, err := env.store.Reject(context.Background(), claim.ID)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/claims/"+claim.ID.String()+"/reject", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	// Отклонение не трогает вещь.
	assert.Equal(t, models.ItemStatusActive, env.store.items[item.ID].Status)
}
