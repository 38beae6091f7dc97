package models

// CacheEntry is one cached mind-map response. The table is append-only: every
// write inserts a new row and lookups take the most recent one, so history is
// retained until an operator prunes it.
type CacheEntry struct {
	ID           uint   `gorm:"primaryKey"`
	Topic        string `gorm:"not null;index:idx_cache_topic_model"`
	Model        string `gorm:"not null;index:idx_cache_topic_model"`
	ResponseJSON string `gorm:"not null"`
	CreatedAt    int64  `gorm:"not null"` // unix seconds
}
