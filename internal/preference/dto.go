package preference

import (
	"errors"
	"fmt"

	"github.com/datatrust/preference-management/internal"
)

// ChangeDTO is the transport shape for one pending preference edit.
type ChangeDTO struct {
	DataType  string  `json:"data_type"`
	CompanyID *string `json:"company_id,omitempty"`
	Allowed   bool    `json:"allowed"`
}

func (d ChangeDTO) Validate() error {
	if d.DataType == "" {
		return errors.New("data_type is required")
	}
	if d.CompanyID != nil && *d.CompanyID == "" {
		return errors.New("company_id must not be empty when present")
	}
	return nil
}

func (d ChangeDTO) ToChange() Change {
	return Change{
		DataType:  d.DataType,
		CompanyID: d.CompanyID,
		Allowed:   d.Allowed,
	}
}

// CommitDTO carries a batch of pending changes for pricing or committing.
type CommitDTO struct {
	Changes []ChangeDTO `json:"changes"`
}

func (d CommitDTO) Validate() error {
	if len(d.Changes) == 0 {
		return errors.New("changes must not be empty")
	}
	seen := make(map[string]struct{}, len(d.Changes))
	for i, c := range d.Changes {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("changes[%d]: %w", i, err)
		}
		key := SynthesizeID(c.CompanyID, c.DataType)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("changes[%d]: duplicate change for %s", i, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (d CommitDTO) ToChanges() []Change {
	changes := make([]Change, len(d.Changes))
	for i, c := range d.Changes {
		changes[i] = c.ToChange()
	}
	return changes
}

// CloneDTO names the source preference set for a clone: a company id or the
// literal "global".
type CloneDTO struct {
	SourceID string `json:"source_id"`
}

func (d CloneDTO) Validate() error {
	if d.SourceID == "" {
		return errors.New("source_id is required")
	}
	return nil
}

// EstimateResponse is the advisory price for a pending batch. The commit
// re-prices against the live company count, so this can go stale.
type EstimateResponse struct {
	Cost         int64 `json:"cost"`
	CompanyCount int64 `json:"company_count"`
	ChangeCount  int   `json:"change_count"`
}

// Domain errors. These are the shared AppError sentinels so handlers can
// map them to HTTP responses through HandleServiceError.
var (
	ErrCompanyNotFound    = internal.ErrCompanyNotFound
	ErrUnknownDataType    = internal.ErrUnknownDataType
	ErrSelfClone          = internal.ErrSelfClone
	ErrEmptyChangeSet     = internal.ErrEmptyChangeSet
	ErrInsufficientTokens = internal.ErrInsufficientTokens
)
