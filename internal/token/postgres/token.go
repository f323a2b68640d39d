package postgres

import (
	tokenDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/token"
	userDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/user"
	"github.com/datatrust/preference-management/internal/token"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) ListPackages() ([]*tokenDatamodel.TokenPackage, error) {
	var packages []*tokenDatamodel.TokenPackage
	err := r.db.Order("amount ASC").Find(&packages).Error
	return packages, err
}

func (r *TokenRepository) GetPackage(id string) (*tokenDatamodel.TokenPackage, error) {
	var pkg tokenDatamodel.TokenPackage
	err := r.db.Where("id = ?", id).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *TokenRepository) ListTransactions(userID int64, limit int) ([]*tokenDatamodel.TokenTransaction, error) {
	var txs []*tokenDatamodel.TokenTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// Credit adds amount to the user's balance and writes the ledger row in
// one transaction so the balance and the ledger cannot drift apart.
func (r *TokenRepository) Credit(userID int64, kind string, amount int64, description string) (*tokenDatamodel.TokenTransaction, error) {
	var ledger *tokenDatamodel.TokenTransaction

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Update("tokens", gorm.Expr("tokens + ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return token.ErrUserNotFound
		}

		var user userDatamodel.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}

		ledger = &tokenDatamodel.TokenTransaction{
			ID:           uuid.New().String(),
			UserID:       userID,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: user.Tokens,
			Description:  description,
		}
		return tx.Create(ledger).Error
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
