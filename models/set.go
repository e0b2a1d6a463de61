package models

// Set is one row of the unioned set query. Provider fragments project
// exactly these three columns.
type Set struct {
	Spec        string `json:"spec" gorm:"column:spec"`
	Name        string `json:"name" gorm:"column:name"`
	Description string `json:"description,omitempty" gorm:"column:description"`
}
