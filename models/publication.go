package models

import (
	"time"
)

// Publication is a published work exposed through the publications provider.
type Publication struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty" gorm:"type:text"`
	Authors  string `json:"authors,omitempty"`

	// Category doubles as the setSpec the publication belongs to.
	Category     string `json:"category" gorm:"index"`
	CategoryName string `json:"category_name,omitempty"`

	DOI       string `json:"doi,omitempty" gorm:"column:doi;index"`
	Language  string `json:"language,omitempty"`
	Rights    string `json:"rights,omitempty"`
	Publisher string `json:"publisher,omitempty"`

	// State 1 = published, 2 = withdrawn (exposed as a deleted record).
	State       int        `json:"state" gorm:"index;default:1"`
	PublishedAt *time.Time `json:"published_at,omitempty" gorm:"index"`
}
