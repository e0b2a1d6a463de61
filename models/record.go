package models

import (
	"time"
)

// Record is one row of the unioned record query. Every provider fragment
// must project exactly these columns so the union stays shape-compatible.
type Record struct {
	Identifier string    `json:"identifier" gorm:"column:identifier"`
	Datestamp  time.Time `json:"datestamp" gorm:"column:datestamp"`
	// Status is "deleted" for tombstones, empty otherwise.
	Status string `json:"status,omitempty" gorm:"column:status"`

	Title       string `json:"title" gorm:"column:title"`
	Creator     string `json:"creator,omitempty" gorm:"column:creator"`
	Subject     string `json:"subject,omitempty" gorm:"column:subject"`
	Description string `json:"description,omitempty" gorm:"column:description"`
	Publisher   string `json:"publisher,omitempty" gorm:"column:publisher"`
	Date        string `json:"date,omitempty" gorm:"column:date"`
	Type        string `json:"type,omitempty" gorm:"column:type"`
	Source      string `json:"source,omitempty" gorm:"column:source"`
	Language    string `json:"language,omitempty" gorm:"column:language"`
	Rights      string `json:"rights,omitempty" gorm:"column:rights"`
}

// Deleted reports whether the record is a tombstone.
func (r *Record) Deleted() bool {
	return r.Status == "deleted"
}

// RecordFilter narrows the record listing of the list verbs.
type RecordFilter struct {
	From  *time.Time
	Until *time.Time
	Set   string
}
