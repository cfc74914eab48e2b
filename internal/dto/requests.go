package dto

// RegisterRequest описывает тело запроса регистрации.
type RegisterRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Phone    *string `json:"phone"`
}

// LoginRequest описывает тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest описывает тело запроса обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest описывает тело запроса изменения профиля.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
}

// CreateItemRequest описывает multipart форму создания объявления.
// Изображение приходит отдельным файловым полем "image".
type CreateItemRequest struct {
	Type        string `form:"type" binding:"required"`
	Title       string `form:"title" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Location    string `form:"location" binding:"required"`
	Description string `form:"description" binding:"required"`
}

// UpdateItemRequest описывает multipart форму обновления объявления.
// Пустые поля не меняют текущие значения.
type UpdateItemRequest struct {
	Type        string `form:"type"`
	Title       string `form:"title"`
	Category    string `form:"category"`
	Location    string `form:"location"`
	Description string `form:"description"`
	Status      string `form:"status"`
}

// CreateClaimRequest описывает тело запроса создания заявки.
type CreateClaimRequest struct {
	ItemID         string `json:"item_id" binding:"required,uuid"`
	RequestMessage string `json:"request_message" binding:"required"`
}
