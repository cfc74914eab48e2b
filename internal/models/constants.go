package models

// ItemType константы типов объявлений
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// ItemStatus константы статусов объявлений
const (
	ItemStatusActive   = "active"
	ItemStatusResolved = "resolved"
)

// ClaimStatus константы статусов заявок
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// ValidItemTypes список валидных типов объявлений
var ValidItemTypes = map[string]bool{
	ItemTypeLost:  true,
	ItemTypeFound: true,
}

// ValidItemStatuses список валидных статусов объявлений
var ValidItemStatuses = map[string]bool{
	ItemStatusActive:   true,
	ItemStatusResolved: true,
}

// ValidClaimStatuses список валидных статусов заявок
var ValidClaimStatuses = map[string]bool{
	ClaimStatusPending:  true,
	ClaimStatusApproved: true,
	ClaimStatusRejected: true,
}

// ValidItemCategories список валидных категорий вещей
var ValidItemCategories = map[string]bool{
	"Electronics":   true,
	"Documents/IDs": true,
	"Keys":          true,
	"Bags/Wallets":  true,
	"Clothing":      true,
	"Books":         true,
	"Other":         true,
}
