package postgres

import (
	"errors"

	datatypeDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/datatype"
	"github.com/datatrust/preference-management/internal/datatype"
	"gorm.io/gorm"
)

type DataTypeRepository struct {
	db *gorm.DB
}

func NewDataTypeRepository(db *gorm.DB) *DataTypeRepository {
	return &DataTypeRepository{db: db}
}

func (r *DataTypeRepository) ListActive() ([]*datatypeDatamodel.DataType, error) {
	var types []*datatypeDatamodel.DataType
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *DataTypeRepository) GetByName(name string) (*datatypeDatamodel.DataType, error) {
	var dt datatypeDatamodel.DataType
	err := r.db.Where("name = ?", name).First(&dt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, datatype.ErrNotFound
		}
		return nil, err
	}
	return &dt, nil
}
