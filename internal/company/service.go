package company

import (
	"errors"
	"log/slog"

	companyDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/company"
)

type RepositoryAPI interface {
	GetAll() ([]*companyDatamodel.Company, error)
	GetByID(id string) (*companyDatamodel.Company, error)
	Count() (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCompanies() ([]*Company, error) {
	companies, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get companies from repository", "error", err)
		return nil, err
	}

	s.logger.Info("retrieved companies", "count", len(companies))
	return FromDataModelSlice(companies), nil
}

func (s *Service) GetCompanyByID(id string) (*Company, error) {
	company, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to get company", "error", err, "company_id", id)
		return nil, err
	}
	return FromDataModel(company), nil
}

func (s *Service) CountCompanies() (int64, error) {
	count, err := s.repo.Count()
	if err != nil {
		s.logger.Error("failed to count companies", "error", err)
		return 0, err
	}
	return count, nil
}
