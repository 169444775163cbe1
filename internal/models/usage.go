package models

import "time"

// UsageRecord is the persisted selection count for one item signature.
type UsageRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Signature    string    `gorm:"not null;uniqueIndex" json:"signature"`
	Count        int       `gorm:"not null;default:0" json:"count"`
	LastSelected time.Time `gorm:"not null;index" json:"last_selected"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SearchQuery is one persisted search-history entry. Position is the
// most-recent-first rank; position 0 is the newest query.
type SearchQuery struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"not null;uniqueIndex" json:"text"`
	Position  int       `gorm:"not null;index" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
