package models

import (
	"time"
)

// Resource is a standalone content item exposed through the resources provider.
type Resource struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Authors     string `json:"authors,omitempty"`

	// Type doubles as the setSpec the resource belongs to.
	Type     string `json:"type" gorm:"index"`
	TypeName string `json:"type_name,omitempty"`

	Language string `json:"language,omitempty"`
	Rights   string `json:"rights,omitempty"`
	Link     string `json:"link,omitempty"`

	// Standalone resources are harvestable; children of other resources are not.
	Standalone bool `json:"standalone" gorm:"index;default:true"`

	// State 1 = published, 2 = removed (exposed as a deleted record).
	State       int        `json:"state" gorm:"index;default:1"`
	PublishedAt *time.Time `json:"published_at,omitempty" gorm:"index"`
}
