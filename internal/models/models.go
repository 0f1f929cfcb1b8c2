package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all local models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// SessionEntry is one persisted session key for a backend profile.
// Keys mirror the browser storage keys: "user" (JSON) and "userToken".
type SessionEntry struct {
	BaseModel
	Profile string `json:"profile" gorm:"not null;uniqueIndex:idx_session_profile_key"`
	Key     string `json:"key" gorm:"column:entry_key;not null;uniqueIndex:idx_session_profile_key"`
	Value   string `json:"value" gorm:"type:text;not null"`
}

// Favorite marks a product as a favorite of a user on a backend profile
type Favorite struct {
	BaseModel
	Profile   string `json:"profile" gorm:"not null;uniqueIndex:idx_favorite_owner_product"`
	UserID    string `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_owner_product"`
	ProductID string `json:"product_id" gorm:"not null;uniqueIndex:idx_favorite_owner_product"`
}

// AutoMigrate runs database migrations for all local models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SessionEntry{}, &Favorite{})
}
