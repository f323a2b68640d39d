package token

import "time"

// TokenPackage is a static catalog entry for the token store.
type TokenPackage struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Amount      int64  `json:"amount" gorm:"not null"`
	PriceCents  int64  `json:"price_cents" gorm:"column:price_cents;not null"`
	Description string `json:"description"`
}

func (TokenPackage) TableName() string {
	return "token_packages"
}

const (
	KindPurchase = "purchase"
	KindSpend    = "spend"
	KindGrant    = "grant"
)

// TokenTransaction is the ledger of balance movements: signup grants,
// package purchases, and commit spends.
type TokenTransaction struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"user_id" gorm:"column:user_id;not null;index"`
	Kind         string    `json:"kind" gorm:"not null"`
	Amount       int64     `json:"amount" gorm:"not null"`
	BalanceAfter int64     `json:"balance_after" gorm:"column:balance_after;not null"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}
