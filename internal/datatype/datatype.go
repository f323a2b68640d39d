package datatype

import (
	"errors"
	"time"

	datatypeDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/datatype"
)

// DataType describes one kind of personal data the platform tracks
// consent for. Names are free-form strings chosen at seed time; the
// registry is the single source of which names are valid.
type DataType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	IsSensitive bool      `json:"is_sensitive"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("data type not found")

func FromDataModel(dt *datatypeDatamodel.DataType) *DataType {
	return &DataType{
		ID:          dt.ID,
		Name:        dt.Name,
		Category:    dt.Category,
		Description: dt.Description,
		IsSensitive: dt.IsSensitive,
		CreatedAt:   dt.CreatedAt,
		UpdatedAt:   dt.UpdatedAt,
	}
}

func FromDataModelSlice(types []*datatypeDatamodel.DataType) []*DataType {
	result := make([]*DataType, len(types))
	for i, dt := range types {
		result[i] = FromDataModel(dt)
	}
	return result
}
