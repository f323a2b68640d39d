package postgres

import (
	"time"

	preferenceDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/preference"
	tokenDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/token"
	userDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/user"
	"github.com/datatrust/preference-management/internal/preference"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository implements the preference.Repository interface using GORM
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) preference.Repository {
	return &PreferenceRepository{db: db}
}

// ListForUser retrieves every preference record owned by the user.
func (r *PreferenceRepository) ListForUser(userID int64) ([]*preferenceDatamodel.Preference, error) {
	var prefs []*preferenceDatamodel.Preference
	err := r.db.Where("user_id = ?", userID).
		Order("data_type ASC").
		Find(&prefs).Error
	return prefs, err
}

// Upsert writes one preference record. The deterministic id encodes the
// (user, data_type, company) key, so a conflict on the primary key is a
// toggle of the existing record.
func (r *PreferenceRepository) Upsert(pref *preferenceDatamodel.Preference) error {
	return upsertTx(r.db, pref)
}

// UpsertAll writes a batch of preference records in one transaction.
func (r *PreferenceRepository) UpsertAll(prefs []*preferenceDatamodel.Preference) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range prefs {
			if err := upsertTx(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// CommitChanges deducts cost from the user's token balance, records a spend
// ledger entry, and upserts every pending change inside one transaction.
// The guarded UPDATE keeps the balance from ever going negative even under
// concurrent commits; when it matches no row the whole transaction rolls
// back with preference.ErrInsufficientTokens.
func (r *PreferenceRepository) CommitChanges(userID int64, cost int64, description string, prefs []*preferenceDatamodel.Preference) (int64, error) {
	var balanceAfter int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if cost > 0 {
			res := tx.Model(&userDatamodel.User{}).
				Where("id = ? AND tokens >= ?", userID, cost).
				Updates(map[string]interface{}{
					"tokens":     gorm.Expr("tokens - ?", cost),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return preference.ErrInsufficientTokens
			}
		}

		var user userDatamodel.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		balanceAfter = user.Tokens

		if cost > 0 {
			spend := &tokenDatamodel.TokenTransaction{
				ID:           uuid.New().String(),
				UserID:       userID,
				Kind:         tokenDatamodel.KindSpend,
				Amount:       -cost,
				BalanceAfter: balanceAfter,
				Description:  description,
				CreatedAt:    time.Now(),
			}
			if err := tx.Create(spend).Error; err != nil {
				return err
			}
		}

		for _, p := range prefs {
			if err := upsertTx(tx, p); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}
	return balanceAfter, nil
}

func upsertTx(tx *gorm.DB, pref *preferenceDatamodel.Preference) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"allowed":    pref.Allowed,
			"updated_at": time.Now(),
		}),
	}).Create(pref).Error
}
