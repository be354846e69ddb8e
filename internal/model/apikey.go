package model

type APIKeyStatus string

const (
	APIKeyStatusActive  APIKeyStatus = "ACTIVE"
	APIKeyStatusRevoked APIKeyStatus = "REVOKED"
)

type APIKey struct {
	ID         int          `json:"id" gorm:"primaryKey"`
	UserID     uint         `json:"user_id" gorm:"index;not null"`
	Name       string       `json:"name" gorm:"not null"`
	APIKey     string       `json:"api_key" gorm:"unique;not null"`
	Status     APIKeyStatus `json:"status" gorm:"default:ACTIVE"`
	DailyLimit int          `json:"daily_limit" gorm:"not null"`
}

type APIKeyCreate struct {
	Name       string `json:"name"`
	DailyLimit int    `json:"daily_limit"`
	UserID     uint   `json:"user_id,omitempty"` // admin-only, ignored for self-service
}

type APIKeyLimitUpdate struct {
	ID         int `json:"id"`
	DailyLimit int `json:"daily_limit"`
}
