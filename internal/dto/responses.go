package dto

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse стандартный формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse стандартный формат успешного ответа с сообщением.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UserContact описывает видимую наружу часть профиля пользователя.
// Email и Phone — указатели с omitempty: пока заявка не одобрена,
// поля отсутствуют в JSON целиком, а не приходят как null.
type UserContact struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
}

// ItemSummary краткое описание вещи для списков заявок.
type ItemSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// ClaimView представление заявки для конкретного наблюдателя.
type ClaimView struct {
	ID             uuid.UUID    `json:"id"`
	ItemID         uuid.UUID    `json:"item_id"`
	ClaimerID      uuid.UUID    `json:"claimer_id"`
	FinderID       uuid.UUID    `json:"finder_id"`
	Status         string       `json:"status"`
	RequestMessage string       `json:"request_message"`
	Item           *ItemSummary `json:"item,omitempty"`
	Finder         *UserContact `json:"finder,omitempty"`
	Claimer        *UserContact `json:"claimer,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
