package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/datatrust/preference-management/internal"
	companyDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/company"
	preferenceDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/preference"
	"github.com/datatrust/preference-management/internal/core/events"
)

// Repository defines the data access methods for preferences. CommitChanges
// must apply the token deduction and every upsert in one transaction; a
// partial commit must never be observable.
type Repository interface {
	ListForUser(userID int64) ([]*preferenceDatamodel.Preference, error)
	Upsert(pref *preferenceDatamodel.Preference) error
	UpsertAll(prefs []*preferenceDatamodel.Preference) error
	CommitChanges(userID int64, cost int64, description string, prefs []*preferenceDatamodel.Preference) (balanceAfter int64, err error)
}

// CompanyDirectory is the read-side collaborator for company data.
type CompanyDirectory interface {
	GetByID(id string) (*companyDatamodel.Company, error)
	Count() (int64, error)
}

// DataTypeRegistry validates data type names at the boundary so free-form
// strings cannot create orphan preference records.
type DataTypeRegistry interface {
	IsKnown(name string) (bool, error)
	ListActiveNames() ([]string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service holds the preference core: effective-value resolution, cloning,
// cost calculation, and the change-commit transaction.
type Service struct {
	repo      Repository
	companies CompanyDirectory
	dataTypes DataTypeRegistry
	eventBus  EventPublisher
	logger    *slog.Logger
	locks     userLocks
}

func NewService(repo Repository, companies CompanyDirectory, dataTypes DataTypeRegistry, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		companies: companies,
		dataTypes: dataTypes,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// GetAllPreferences returns every stored preference record for the user,
// global and company-scoped.
func (s *Service) GetAllPreferences(userID int64) ([]*Preference, error) {
	stored, err := s.repo.ListForUser(userID)
	if err != nil {
		s.logger.Error("failed to list preferences", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModelSlice(stored), nil
}

// GetGlobalPreferences returns the user's global defaults, one entry per
// active data type. Types without a stored record appear as default-deny.
func (s *Service) GetGlobalPreferences(userID int64) ([]*Preference, error) {
	stored, err := s.repo.ListForUser(userID)
	if err != nil {
		s.logger.Error("failed to list preferences", "error", err, "user_id", userID)
		return nil, err
	}

	byType := make(map[string]*preferenceDatamodel.Preference)
	for _, p := range stored {
		if p.CompanyID == nil {
			byType[p.DataType] = p
		}
	}

	names, err := s.dataTypes.ListActiveNames()
	if err != nil {
		s.logger.Error("failed to list data types", "error", err)
		return nil, err
	}

	result := make([]*Preference, 0, len(names))
	for _, name := range names {
		if p, ok := byType[name]; ok {
			result = append(result, FromDataModel(p))
			continue
		}
		result = append(result, &Preference{
			ID:       RecordID(userID, nil, name),
			UserID:   userID,
			DataType: name,
			Allowed:  false,
		})
	}

	return result, nil
}

// GetCompanyPreferences returns the resolved view for one company: every
// data type the company declares, with the effective value and whether it
// came from the global tier.
func (s *Service) GetCompanyPreferences(userID int64, companyID string) ([]EffectivePreference, error) {
	company, err := s.companies.GetByID(companyID)
	if err != nil {
		s.logger.Error("company lookup failed", "error", err, "company_id", companyID)
		if errors.Is(err, ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	stored, err := s.repo.ListForUser(userID)
	if err != nil {
		s.logger.Error("failed to list preferences", "error", err, "user_id", userID)
		return nil, err
	}
	prefs := FromDataModelSlice(stored)

	result := make([]EffectivePreference, 0, len(company.DataSharingPolicies))
	for _, policy := range company.DataSharingPolicies {
		result = append(result, Resolve(prefs, policy.DataType, &companyID))
	}

	return result, nil
}

// ResolvePreference answers a single effective-preference query.
func (s *Service) ResolvePreference(userID int64, dataType string, companyID *string) (EffectivePreference, error) {
	known, err := s.dataTypes.IsKnown(dataType)
	if err != nil {
		return EffectivePreference{}, err
	}
	if !known {
		return EffectivePreference{}, ErrUnknownDataType
	}

	stored, err := s.repo.ListForUser(userID)
	if err != nil {
		s.logger.Error("failed to list preferences", "error", err, "user_id", userID)
		return EffectivePreference{}, err
	}

	return Resolve(FromDataModelSlice(stored), dataType, companyID), nil
}

// EstimateCost prices a pending batch against the current company count.
// Advisory only: the commit re-prices inside its transaction.
func (s *Service) EstimateCost(userID int64, changes []Change) (EstimateResponse, error) {
	if len(changes) == 0 {
		return EstimateResponse{}, ErrEmptyChangeSet
	}
	if err := s.validateChanges(changes); err != nil {
		return EstimateResponse{}, err
	}

	companyCount, err := s.companies.Count()
	if err != nil {
		s.logger.Error("failed to count companies", "error", err)
		return EstimateResponse{}, err
	}

	return EstimateResponse{
		Cost:         CalculateCost(changes, companyCount),
		CompanyCount: companyCount,
		ChangeCount:  len(changes),
	}, nil
}

// CommitChanges prices the batch, checks and deducts the token balance, and
// persists every change, all inside one repository transaction. On
// insufficient funds nothing is mutated and ErrInsufficientTokens is
// returned alongside the failed result.
func (s *Service) CommitChanges(ctx context.Context, userID int64, changes []Change) (CommitResult, error) {
	if len(changes) == 0 {
		return CommitResult{}, ErrEmptyChangeSet
	}
	if err := s.validateChanges(changes); err != nil {
		return CommitResult{}, err
	}

	mu := s.locks.lock(userID)
	defer mu.Unlock()

	companyCount, err := s.companies.Count()
	if err != nil {
		s.logger.Error("failed to count companies", "error", err)
		return CommitResult{}, err
	}
	cost := CalculateCost(changes, companyCount)

	now := time.Now()
	prefs := make([]*preferenceDatamodel.Preference, len(changes))
	for i, c := range changes {
		prefs[i] = &preferenceDatamodel.Preference{
			ID:        RecordID(userID, c.CompanyID, c.DataType),
			UserID:    userID,
			DataType:  c.DataType,
			CompanyID: c.CompanyID,
			Allowed:   c.Allowed,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	description := fmt.Sprintf("commit of %d preference change(s)", len(changes))
	balanceAfter, err := s.repo.CommitChanges(userID, cost, description, prefs)
	if err != nil {
		if err == ErrInsufficientTokens {
			s.logger.Warn("commit rejected: insufficient tokens",
				"user_id", userID,
				"cost", cost,
				"change_count", len(changes))
			return CommitResult{Success: false, Cost: cost, ChangeCount: len(changes)}, ErrInsufficientTokens
		}
		s.logger.Error("commit failed", "error", err, "user_id", userID, "cost", cost)
		return CommitResult{}, internal.NewPersistenceError("committing preference changes failed", err)
	}

	s.logger.Info("preference changes committed",
		"user_id", userID,
		"change_count", len(changes),
		"cost", cost,
		"balance_after", balanceAfter)

	if s.eventBus != nil {
		for _, c := range changes {
			s.eventBus.Publish(ctx, events.NewPreferenceChangedEvent(userID, c.DataType, c.CompanyID, c.Allowed))
		}
		s.eventBus.Publish(ctx, events.NewPreferencesCommittedEvent(userID, len(changes), cost, balanceAfter))
	}

	return CommitResult{
		Success:      true,
		Cost:         cost,
		BalanceAfter: balanceAfter,
		ChangeCount:  len(changes),
	}, nil
}

// ClonePreferences copies the source preference set onto the target company,
// restricted to the data types the target declares. Source is either another
// company's id or SourceGlobal. Cloning charges no tokens.
func (s *Service) ClonePreferences(ctx context.Context, userID int64, sourceID, targetCompanyID string) (int, error) {
	if sourceID == targetCompanyID {
		s.logger.Warn("clone rejected: source equals target",
			"user_id", userID,
			"company_id", targetCompanyID)
		return 0, ErrSelfClone
	}

	target, err := s.companies.GetByID(targetCompanyID)
	if err != nil {
		s.logger.Error("target company lookup failed", "error", err, "company_id", targetCompanyID)
		if errors.Is(err, ErrCompanyNotFound) {
			return 0, ErrCompanyNotFound
		}
		return 0, err
	}

	if sourceID != SourceGlobal {
		if _, err := s.companies.GetByID(sourceID); err != nil {
			s.logger.Error("source company lookup failed", "error", err, "company_id", sourceID)
			if errors.Is(err, ErrCompanyNotFound) {
				return 0, ErrCompanyNotFound
			}
			return 0, err
		}
	}

	// Target with no declared data types: nothing to clone.
	if len(target.DataSharingPolicies) == 0 {
		s.logger.Info("clone is a no-op: target declares no data types",
			"user_id", userID,
			"company_id", targetCompanyID)
		return 0, nil
	}

	stored, err := s.repo.ListForUser(userID)
	if err != nil {
		s.logger.Error("failed to list preferences", "error", err, "user_id", userID)
		return 0, err
	}
	prefs := FromDataModelSlice(stored)

	now := time.Now()
	cloned := make([]*preferenceDatamodel.Preference, 0, len(target.DataSharingPolicies))
	for _, policy := range target.DataSharingPolicies {
		allowed := s.resolveCloneValue(prefs, policy.DataType, sourceID)
		cloned = append(cloned, &preferenceDatamodel.Preference{
			ID:        RecordID(userID, &targetCompanyID, policy.DataType),
			UserID:    userID,
			DataType:  policy.DataType,
			CompanyID: &targetCompanyID,
			Allowed:   allowed,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.repo.UpsertAll(cloned); err != nil {
		s.logger.Error("failed to persist cloned preferences",
			"error", err,
			"user_id", userID,
			"company_id", targetCompanyID)
		return 0, internal.NewPersistenceError("persisting cloned preferences failed", err)
	}

	s.logger.Info("preferences cloned",
		"user_id", userID,
		"source_id", sourceID,
		"target_company_id", targetCompanyID,
		"cloned_count", len(cloned))

	if s.eventBus != nil {
		for _, p := range cloned {
			s.eventBus.Publish(ctx, events.NewPreferenceChangedEvent(userID, p.DataType, p.CompanyID, p.Allowed))
		}
		s.eventBus.Publish(ctx, events.NewPreferencesClonedEvent(userID, sourceID, targetCompanyID, len(cloned)))
	}

	return len(cloned), nil
}

// resolveCloneValue picks the source value for one data type: the source
// company's record if present, else the global record, else deny. A global
// source skips straight to the global tier.
func (s *Service) resolveCloneValue(prefs []*Preference, dataType, sourceID string) bool {
	if sourceID != SourceGlobal {
		for _, p := range prefs {
			if p.DataType == dataType && p.CompanyID != nil && *p.CompanyID == sourceID {
				return p.Allowed
			}
		}
	}

	for _, p := range prefs {
		if p.DataType == dataType && p.CompanyID == nil {
			return p.Allowed
		}
	}

	return false
}

func (s *Service) validateChanges(changes []Change) error {
	companies := make(map[string]struct{})
	for _, c := range changes {
		known, err := s.dataTypes.IsKnown(c.DataType)
		if err != nil {
			return err
		}
		if !known {
			s.logger.Warn("change rejected: unknown data type", "data_type", c.DataType)
			return ErrUnknownDataType
		}
		if c.CompanyID != nil {
			companies[*c.CompanyID] = struct{}{}
		}
	}

	for id := range companies {
		if _, err := s.companies.GetByID(id); err != nil {
			if errors.Is(err, ErrCompanyNotFound) {
				s.logger.Warn("change rejected: unknown company", "company_id", id)
				return ErrCompanyNotFound
			}
			return err
		}
	}

	return nil
}
