package company

import "time"

type Company struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Industry    string    `json:"industry"`
	Description string    `json:"description"`
	Logo        *string   `json:"logo,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`

	DataSharingPolicies []DataSharingPolicy `json:"data_sharing_policies" gorm:"foreignKey:CompanyID;references:ID"`
}

func (Company) TableName() string {
	return "companies"
}

// DataSharingPolicy declares one data type a company collects and shares.
// The set of policies defines which data types are relevant to the company.
type DataSharingPolicy struct {
	ID           string   `json:"id" gorm:"primaryKey"`
	CompanyID    string   `json:"company_id" gorm:"column:company_id;not null;index"`
	DataType     string   `json:"data_type" gorm:"column:data_type;not null"`
	Purpose      string   `json:"purpose"`
	ThirdParties []string `json:"third_parties" gorm:"column:third_parties;serializer:json"`
	Description  string   `json:"description"`
	Position     int      `json:"-" gorm:"column:position"`
}

func (DataSharingPolicy) TableName() string {
	return "data_sharing_policies"
}
