package models

import (
	"time"

	"github.com/google/uuid"
)

// Item описывает объявление о потерянной или найденной вещи.
type Item struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Category    string    `db:"category" json:"category"`
	Location    string    `db:"location" json:"location"`
	Description string    `db:"description" json:"description"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ItemWithOwner объявление вместе с именем автора.
type ItemWithOwner struct {
	Item
	OwnerUsername string `db:"owner_username" json:"owner_username"`
}

// ItemFilter параметры фильтрации списка объявлений.
type ItemFilter struct {
	Type     string
	Category string
	Location string
	Status   string
	Search   string
	Limit    int
	Offset   int
}
