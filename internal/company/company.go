package company

import (
	"time"

	"github.com/datatrust/preference-management/internal"
	companyDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/company"
)

type Company struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Industry            string              `json:"industry"`
	Description         string              `json:"description"`
	Logo                *string             `json:"logo,omitempty"`
	DataSharingPolicies []DataSharingPolicy `json:"data_sharing_policies"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

type DataSharingPolicy struct {
	ID           string   `json:"id"`
	DataType     string   `json:"data_type"`
	Purpose      string   `json:"purpose"`
	ThirdParties []string `json:"third_parties"`
	Description  string   `json:"description"`
}

// DeclaredDataTypes lists the data types the company's sharing policies
// name, in policy order.
func (c *Company) DeclaredDataTypes() []string {
	types := make([]string, 0, len(c.DataSharingPolicies))
	for _, p := range c.DataSharingPolicies {
		types = append(types, p.DataType)
	}
	return types
}

func (c *Company) Declares(dataType string) bool {
	for _, p := range c.DataSharingPolicies {
		if p.DataType == dataType {
			return true
		}
	}
	return false
}

var ErrNotFound = internal.ErrCompanyNotFound

func FromDataModel(c *companyDatamodel.Company) *Company {
	policies := make([]DataSharingPolicy, len(c.DataSharingPolicies))
	for i, p := range c.DataSharingPolicies {
		policies[i] = DataSharingPolicy{
			ID:           p.ID,
			DataType:     p.DataType,
			Purpose:      p.Purpose,
			ThirdParties: p.ThirdParties,
			Description:  p.Description,
		}
	}
	return &Company{
		ID:                  c.ID,
		Name:                c.Name,
		Industry:            c.Industry,
		Description:         c.Description,
		Logo:                c.Logo,
		DataSharingPolicies: policies,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func FromDataModelSlice(companies []*companyDatamodel.Company) []*Company {
	result := make([]*Company, len(companies))
	for i, c := range companies {
		result[i] = FromDataModel(c)
	}
	return result
}
