package storage

import (
	"gorm.io/gorm"

	"github.com/qubeshub/com-oaipmh/models"
)

// Executor runs the textual queries the orchestrator composes. Record
// pages are ordered by identifier so pagination stays deterministic for a
// fixed input set.
type Executor struct {
	db *gorm.DB
}

// NewExecutor creates a gorm-backed query executor.
func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

// Count returns the total number of rows the unioned query yields.
func (e *Executor) Count(query string) (int, error) {
	var n int64
	if err := e.db.Raw("SELECT COUNT(*) FROM (" + query + ") AS records").Scan(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// Records returns one page of the unioned record query.
func (e *Executor) Records(query string, limit, offset int) ([]models.Record, error) {
	var records []models.Record
	err := e.db.
		Raw("SELECT * FROM ("+query+") AS records ORDER BY identifier LIMIT ? OFFSET ?", limit, offset).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Sets returns every row of the unioned set query.
func (e *Executor) Sets(query string) ([]models.Set, error) {
	var sets []models.Set
	err := e.db.
		Raw("SELECT * FROM (" + query + ") AS sets ORDER BY spec").
		Scan(&sets).Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}

// Record returns the single row of a record query, or nil when the query
// matches nothing.
func (e *Executor) Record(query string) (*models.Record, error) {
	var records []models.Record
	if err := e.db.Raw(query).Scan(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}
