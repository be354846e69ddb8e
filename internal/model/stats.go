package model

// StatsEndpoint accumulates request outcomes per proxied endpoint.
// Counters live in memory and are flushed to the database periodically.
type StatsEndpoint struct {
	Slug           string `json:"slug" gorm:"primaryKey"`
	RequestSuccess int64  `json:"request_success" gorm:"bigint"`
	RequestFailed  int64  `json:"request_failed" gorm:"bigint"`
}
