package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// События, рассылаемые через WebSocket и сохраняемые в уведомлениях.
const (
	EventClaimReceived = "claim_received"
	EventClaimApproved = "claim_approved"
	EventClaimRejected = "claim_rejected"
)

// Notification описывает уведомление пользователя.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
