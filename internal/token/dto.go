package token

import "github.com/datatrust/preference-management/internal"

var (
	ErrMissingPackageID = internal.ErrMissingPackageID
)

type PurchaseDTO struct {
	PackageID string `json:"package_id"`
}

func (d PurchaseDTO) Validate() error {
	if d.PackageID == "" {
		return ErrMissingPackageID
	}
	return nil
}
