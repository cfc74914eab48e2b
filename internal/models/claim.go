package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim описывает заявку на возврат вещи. FinderID фиксируется в момент
// подачи и не меняется при смене владельца объявления.
type Claim struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ItemID         uuid.UUID `db:"item_id" json:"item_id"`
	ClaimerID      uuid.UUID `db:"claimer_id" json:"claimer_id"`
	FinderID       uuid.UUID `db:"finder_id" json:"finder_id"`
	Status         string    `db:"status" json:"status"`
	RequestMessage string    `db:"request_message" json:"request_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive сообщает, блокирует ли заявка подачу новой на ту же вещь.
func (c *Claim) IsActive() bool {
	return c.Status == ClaimStatusPending || c.Status == ClaimStatusApproved
}

// ClaimWithItem заявка вместе с кратким описанием вещи для списков.
// Поля вещи не сериализуются напрямую: наружу уходит представление
// dto.ClaimView.
type ClaimWithItem struct {
	Claim
	ItemTitle    string  `db:"item_title" json:"-"`
	ItemType     string  `db:"item_type" json:"-"`
	ItemCategory string  `db:"item_category" json:"-"`
	ItemImageURL *string `db:"item_image_url" json:"-"`
}
