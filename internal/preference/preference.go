package preference

import (
	"fmt"
	"strings"
	"time"

	preferenceDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/preference"
)

// SourceGlobal is the sentinel source id for clone operations that copy the
// global preference set instead of another company's.
const SourceGlobal = "global"

type Preference struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	DataType  string    `json:"data_type"`
	CompanyID *string   `json:"company_id,omitempty"`
	Allowed   bool      `json:"allowed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Preference) IsGlobal() bool {
	return p.CompanyID == nil
}

// Change is one pending preference edit. A nil CompanyID targets the global
// default for the data type.
type Change struct {
	DataType  string  `json:"data_type"`
	CompanyID *string `json:"company_id,omitempty"`
	Allowed   bool    `json:"allowed"`
}

func (c Change) IsGlobal() bool {
	return c.CompanyID == nil
}

// EffectivePreference is the resolved allow/deny value after precedence
// rules. IsGlobal reports whether the value came from the global tier.
type EffectivePreference struct {
	DataType string `json:"data_type"`
	Allowed  bool   `json:"allowed"`
	IsGlobal bool   `json:"is_global"`
}

// CommitResult reports the outcome of a change-commit transaction.
type CommitResult struct {
	Success      bool  `json:"success"`
	Cost         int64 `json:"cost"`
	BalanceAfter int64 `json:"balance_after"`
	ChangeCount  int   `json:"change_count"`
}

// Resolve determines the effective allow/deny value for a data type.
// Precedence is two-tiered: a company-specific record wins over the global
// one; with no record at either tier the answer is deny.
func Resolve(prefs []*Preference, dataType string, companyID *string) EffectivePreference {
	if companyID != nil {
		for _, p := range prefs {
			if p.DataType == dataType && p.CompanyID != nil && *p.CompanyID == *companyID {
				return EffectivePreference{DataType: dataType, Allowed: p.Allowed, IsGlobal: false}
			}
		}
	}

	for _, p := range prefs {
		if p.DataType == dataType && p.CompanyID == nil {
			return EffectivePreference{DataType: dataType, Allowed: p.Allowed, IsGlobal: true}
		}
	}

	// default-deny
	return EffectivePreference{DataType: dataType, Allowed: false, IsGlobal: true}
}

// CalculateCost prices a pending batch. A company-specific change costs one
// token; a global change applies to every company at once, so it costs one
// token per existing company. Pure function of the batch and the company
// count handed in; callers must re-price if the count may have moved.
func CalculateCost(changes []Change, companyCount int64) int64 {
	var globalChanges int64
	var companyChanges int64

	for _, c := range changes {
		if c.IsGlobal() {
			globalChanges++
		} else {
			companyChanges++
		}
	}

	return companyChanges + globalChanges*companyCount
}

// SynthesizeID builds the deterministic key for a (dataType, companyId)
// pair, e.g. "global-usage-data" or "c1-location". Upserts keyed on the pair
// always land on the same id.
func SynthesizeID(companyID *string, dataType string) string {
	scope := SourceGlobal
	if companyID != nil {
		scope = *companyID
	}
	slug := strings.ToLower(strings.Join(strings.Fields(dataType), "-"))
	return scope + "-" + slug
}

// RecordID prefixes SynthesizeID with the owning user so the stored id is
// unique across users, e.g. "42/c1-location".
func RecordID(userID int64, companyID *string, dataType string) string {
	return fmt.Sprintf("%d/%s", userID, SynthesizeID(companyID, dataType))
}

func ToDataModel(p *Preference) *preferenceDatamodel.Preference {
	return &preferenceDatamodel.Preference{
		ID:        p.ID,
		UserID:    p.UserID,
		DataType:  p.DataType,
		CompanyID: p.CompanyID,
		Allowed:   p.Allowed,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModel(p *preferenceDatamodel.Preference) *Preference {
	return &Preference{
		ID:        p.ID,
		UserID:    p.UserID,
		DataType:  p.DataType,
		CompanyID: p.CompanyID,
		Allowed:   p.Allowed,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModelSlice(prefs []*preferenceDatamodel.Preference) []*Preference {
	result := make([]*Preference, len(prefs))
	for i, p := range prefs {
		result[i] = FromDataModel(p)
	}
	return result
}
