package model

import "time"

// UsageLog counts consumed requests for one API key on one UTC day.
// The (APIKeyID, Date) pair is unique; increments go through op.UsageConsume
// which enforces the ceiling atomically.
type UsageLog struct {
	ID            int64  `json:"id" gorm:"primaryKey;autoIncrement:false"` // snowflake
	APIKeyID      int    `json:"api_key_id" gorm:"uniqueIndex:idx_usage_key_date;not null"`
	Date          string `json:"date" gorm:"uniqueIndex:idx_usage_key_date;not null"` // 2006-01-02, UTC
	RequestsCount int    `json:"requests_count" gorm:"default:0"`
}

// UsageDay returns the ledger date for t in UTC.
func UsageDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
