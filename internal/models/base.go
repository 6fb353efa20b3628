package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared columns for all tables.
type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the record identifier.
func (b *BaseModel) GetID() string {
	return b.ID
}

// Stamp assigns a fresh identifier and creation timestamps.
func (b *BaseModel) Stamp(id string, now time.Time) {
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Created returns the creation timestamp.
func (b *BaseModel) Created() time.Time {
	return b.CreatedAt
}

// Touch records a modification time.
func (b *BaseModel) Touch(now time.Time) {
	b.UpdatedAt = now
}

// BeforeCreate ensures UUIDs are generated for rows inserted outside the store.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// NewID returns a new opaque identifier.
func NewID() string {
	return uuid.NewString()
}
