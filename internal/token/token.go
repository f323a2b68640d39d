package token

import (
	"time"

	"github.com/datatrust/preference-management/internal"
	tokenDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/token"
)

// Package is a purchasable bundle of consent tokens.
type Package struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description"`
}

// Transaction is one row of the per-user token ledger. Spend entries
// carry a negative amount so the ledger sums to the current balance.
type Transaction struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Kind         string    `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type PurchaseResult struct {
	Transaction *Transaction `json:"transaction"`
	Balance     int64        `json:"balance"`
}

var (
	ErrPackageNotFound = internal.ErrPackageNotFound
	ErrUserNotFound    = internal.ErrUserNotFound
)

func PackageFromDataModel(p *tokenDatamodel.TokenPackage) *Package {
	return &Package{
		ID:          p.ID,
		Name:        p.Name,
		Amount:      p.Amount,
		PriceCents:  p.PriceCents,
		Description: p.Description,
	}
}

func PackagesFromDataModel(packages []*tokenDatamodel.TokenPackage) []*Package {
	result := make([]*Package, len(packages))
	for i, p := range packages {
		result[i] = PackageFromDataModel(p)
	}
	return result
}

func TransactionFromDataModel(t *tokenDatamodel.TokenTransaction) *Transaction {
	return &Transaction{
		ID:           t.ID,
		UserID:       t.UserID,
		Kind:         t.Kind,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

func TransactionsFromDataModel(txs []*tokenDatamodel.TokenTransaction) []*Transaction {
	result := make([]*Transaction, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDataModel(t)
	}
	return result
}
