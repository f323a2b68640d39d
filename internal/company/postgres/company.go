package postgres

import (
	"errors"

	companyDomain "github.com/datatrust/preference-management/internal/company"
	companyDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/company"
	"gorm.io/gorm"
)

// CompanyRepository implements company.RepositoryAPI and the preference
// core's CompanyDirectory collaborator using GORM.
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetAll() ([]*companyDatamodel.Company, error) {
	var companies []*companyDatamodel.Company
	err := r.db.Preload("DataSharingPolicies", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) GetByID(id string) (*companyDatamodel.Company, error) {
	var company companyDatamodel.Company
	err := r.db.Preload("DataSharingPolicies", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", id).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companyDomain.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&companyDatamodel.Company{}).Count(&count).Error
	return count, err
}
