package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/refind-app/refind-backend/internal/models"
)

func claimWithItem(status string) *models.ClaimWithItem {
	return &models.ClaimWithItem{
		Claim: models.Claim{
			ID:        uuid.New(),
			ItemID:    uuid.New(),
			ClaimerID: uuid.New(),
			FinderID:  uuid.New(),
			Status:    status,
		},
		ItemTitle:    "Найден кошелёк",
		ItemType:     models.ItemTypeFound,
		ItemCategory: "Bags/Wallets",
	}
}

func testContact() *models.ContactInfo {
	phone := "+7 900 555-35-35"
	return &models.ContactInfo{
		ID:       uuid.New(),
		Username: "ivan",
		Email:    "ivan@example.com",
		Phone:    &phone,
	}
}

func TestProjectForClaimant_PendingHidesContact(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusPending)
	view := ProjectForClaimant(claim, testContact())

	if assert.NotNil(t, view.Finder) {
		assert.Equal(t, "ivan", view.Finder.Username)
		assert.Nil(t, view.Finder.Email)
		assert.Nil(t, view.Finder.Phone)
	}
}

func TestProjectForClaimant_RejectedHidesContact(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusRejected)
	view := ProjectForClaimant(claim, testContact())

	if assert.NotNil(t, view.Finder) {
		assert.Nil(t, view.Finder.Email)
		assert.Nil(t, view.Finder.Phone)
	}
}

func TestProjectForClaimant_ApprovedRevealsContact(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusApproved)
	view := ProjectForClaimant(claim, testContact())

	if assert.NotNil(t, view.Finder) {
		assert.NotNil(t, view.Finder.Email)
		assert.Equal(t, "ivan@example.com", *view.Finder.Email)
		assert.NotNil(t, view.Finder.Phone)
	}
}

// До одобрения полей email и phone в JSON нет совсем, а не null.
func TestProjectForClaimant_PendingJSONOmitsFields(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusPending)
	view := ProjectForClaimant(claim, testContact())

	raw, err := json.Marshal(view)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(raw, &decoded))

	finder, ok := decoded["finder"].(map[string]any)
	assert.True(t, ok)

	_, hasEmail := finder["email"]
	_, hasPhone := finder["phone"]
	assert.False(t, hasEmail)
	assert.False(t, hasPhone)
	assert.Equal(t, "ivan", finder["username"])
}

func TestProjectForClaimant_NilFinderTolerated(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusApproved)
	view := ProjectForClaimant(claim, nil)

	assert.Nil(t, view.Finder)
	if assert.NotNil(t, view.Item) {
		assert.Equal(t, "Найден кошелёк", view.Item.Title)
	}
}

func TestProjectForFinder_PendingShowsFullClaimerContact(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusPending)
	claimer := testContact()
	view := ProjectForFinder(claim, claimer)

	if assert.NotNil(t, view.Claimer) {
		assert.NotNil(t, view.Claimer.Email)
		assert.Equal(t, claimer.Email, *view.Claimer.Email)
		assert.NotNil(t, view.Claimer.Phone)
	}
}

func TestProjectForFinder_IncludesItemSummary(t *testing.T) {
	claim := claimWithItem(models.ClaimStatusPending)
	view := ProjectForFinder(claim, testContact())

	if assert.NotNil(t, view.Item) {
		assert.Equal(t, claim.ItemID, view.Item.ID)
		assert.Equal(t, models.ItemTypeFound, view.Item.Type)
	}
}
