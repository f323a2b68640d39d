package token

import (
	"context"
	"log/slog"

	tokenDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/token"
	"github.com/datatrust/preference-management/internal/core/events"
)

type Repository interface {
	ListPackages() ([]*tokenDatamodel.TokenPackage, error)
	GetPackage(id string) (*tokenDatamodel.TokenPackage, error)
	ListTransactions(userID int64, limit int) ([]*tokenDatamodel.TokenTransaction, error)
	// Credit atomically adds amount to the user's balance and records
	// the ledger row. Returns the balance after the credit.
	Credit(userID int64, kind string, amount int64, description string) (*tokenDatamodel.TokenTransaction, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) ListPackages() ([]*Package, error) {
	packages, err := s.repo.ListPackages()
	if err != nil {
		s.logger.Error("failed to list token packages", "error", err)
		return nil, err
	}
	return PackagesFromDataModel(packages), nil
}

func (s *Service) ListTransactions(userID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	txs, err := s.repo.ListTransactions(userID, limit)
	if err != nil {
		s.logger.Error("failed to list token transactions", "error", err, "user_id", userID)
		return nil, err
	}
	return TransactionsFromDataModel(txs), nil
}

// Grant credits tokens outside a purchase, such as the signup balance.
func (s *Service) Grant(userID int64, amount int64, description string) error {
	tx, err := s.repo.Credit(userID, tokenDatamodel.KindGrant, amount, description)
	if err != nil {
		s.logger.Error("failed to grant tokens", "error", err, "user_id", userID, "amount", amount)
		return err
	}

	s.logger.Info("tokens granted", "user_id", userID, "amount", amount, "balance_after", tx.BalanceAfter)
	return nil
}

// Purchase credits the user with the package's token amount. There is no
// real payment leg; the purchase succeeds as soon as the ledger row and
// balance update land in one transaction.
func (s *Service) Purchase(ctx context.Context, userID int64, dto PurchaseDTO) (*PurchaseResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	pkg, err := s.repo.GetPackage(dto.PackageID)
	if err != nil {
		s.logger.Warn("purchase for unknown package", "package_id", dto.PackageID, "user_id", userID)
		return nil, ErrPackageNotFound
	}

	tx, err := s.repo.Credit(userID, tokenDatamodel.KindPurchase, pkg.Amount, "purchase: "+pkg.Name)
	if err != nil {
		s.logger.Error("failed to credit tokens", "error", err, "user_id", userID, "package_id", pkg.ID)
		return nil, err
	}

	s.logger.Info("tokens purchased",
		"user_id", userID,
		"package_id", pkg.ID,
		"amount", pkg.Amount,
		"balance_after", tx.BalanceAfter)

	if s.eventBus != nil {
		event := events.NewTokensPurchasedEvent(userID, pkg.ID, pkg.Amount, tx.BalanceAfter)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish tokens purchased event", "error", err)
		}
	}

	return &PurchaseResult{
		Transaction: TransactionFromDataModel(tx),
		Balance:     tx.BalanceAfter,
	}, nil
}
