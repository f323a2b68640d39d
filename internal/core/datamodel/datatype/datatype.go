package datatype

import "time"

// DataType is the canonical registry of data categories. Preference writes
// validate their data_type string against this table so typos cannot create
// orphan preference rows.
type DataType struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Category    string    `json:"category" gorm:"not null"`
	Description string    `json:"description"`
	IsSensitive bool      `json:"is_sensitive" gorm:"column:is_sensitive;default:false"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (DataType) TableName() string {
	return "data_types"
}
