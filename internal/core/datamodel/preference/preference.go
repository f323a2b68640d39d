package preference

import "time"

// Preference stores one allow/deny decision for a data type. A nil CompanyID
// means the row is a global default; otherwise it is scoped to that company.
// At most one row exists per (user_id, data_type, company_id).
// The partial index covers global rows: NULL company ids compare distinct
// under the composite unique index.
type Preference struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:uix_user_type_company;uniqueIndex:uix_user_type_global,where:company_id IS NULL"`
	DataType  string    `json:"data_type" gorm:"column:data_type;not null;uniqueIndex:uix_user_type_company;uniqueIndex:uix_user_type_global,where:company_id IS NULL"`
	CompanyID *string   `json:"company_id,omitempty" gorm:"column:company_id;uniqueIndex:uix_user_type_company"`
	Allowed   bool      `json:"allowed" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Preference) TableName() string {
	return "preferences"
}
