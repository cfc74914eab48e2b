package service

import (
	"github.com/refind-app/refind-backend/internal/dto"
	"github.com/refind-app/refind-backend/internal/models"
)

// Проекции заявок для двух сторон. Контакты нашедшего — чувствительные
// данные: заявитель получает их только после одобрения, до этого момента
// полей email и phone в ответе нет вовсе.

// ProjectForClaimant строит представление заявки для её автора.
func ProjectForClaimant(claim *models.ClaimWithItem, finder *models.ContactInfo) dto.ClaimView {
	view := claimView(&claim.Claim)
	view.Item = itemSummary(claim)

	if finder == nil {
		return *view
	}

	if claim.Status == models.ClaimStatusApproved {
		view.Finder = FullContact(finder)
	} else {
		view.Finder = PublicContact(finder)
	}

	return *view
}

// ProjectForFinder строит представление заявки для автора объявления.
// Контакты заявителя видны в любом статусе: без них нашедшему нечем
// проверить, что вещь действительно принадлежит заявителю.
func ProjectForFinder(claim *models.ClaimWithItem, claimer *models.ContactInfo) dto.ClaimView {
	view := claimView(&claim.Claim)
	view.Item = itemSummary(claim)

	if claimer != nil {
		view.Claimer = FullContact(claimer)
	}

	return *view
}

// FullContact возвращает контакт с email и телефоном.
func FullContact(c *models.ContactInfo) *dto.UserContact {
	return &dto.UserContact{
		ID:       c.ID,
		Username: c.Username,
		Email:    &c.Email,
		Phone:    c.Phone,
	}
}

// PublicContact возвращает только публичную часть контакта.
func PublicContact(c *models.ContactInfo) *dto.UserContact {
	return &dto.UserContact{
		ID:       c.ID,
		Username: c.Username,
	}
}

func claimView(c *models.Claim) *dto.ClaimView {
	return &dto.ClaimView{
		ID:             c.ID,
		ItemID:         c.ItemID,
		ClaimerID:      c.ClaimerID,
		FinderID:       c.FinderID,
		Status:         c.Status,
		RequestMessage: c.RequestMessage,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func itemSummary(c *models.ClaimWithItem) *dto.ItemSummary {
	return &dto.ItemSummary{
		ID:       c.ItemID,
		Title:    c.ItemTitle,
		Type:     c.ItemType,
		Category: c.ItemCategory,
		ImageURL: c.ItemImageURL,
	}
}
