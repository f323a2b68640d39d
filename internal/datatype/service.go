package datatype

import (
	"errors"
	"log/slog"

	datatypeDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/datatype"
)

type RepositoryAPI interface {
	ListActive() ([]*datatypeDatamodel.DataType, error)
	GetByName(name string) (*datatypeDatamodel.DataType, error)
}

// Service is the data type registry. Besides serving the directory
// endpoint it validates data type names for the preference core.
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

func (s *Service) ListActive() ([]*DataType, error) {
	types, err := s.repo.ListActive()
	if err != nil {
		s.logger.Error("failed to list data types", "error", err)
		return nil, err
	}
	return FromDataModelSlice(types), nil
}

// ListActiveNames returns active data type names in registry order.
func (s *Service) ListActiveNames() ([]string, error) {
	types, err := s.repo.ListActive()
	if err != nil {
		s.logger.Error("failed to list data type names", "error", err)
		return nil, err
	}

	names := make([]string, 0, len(types))
	for _, dt := range types {
		names = append(names, dt.Name)
	}
	return names, nil
}

// IsKnown reports whether name identifies an active registered data type.
// Only a registry miss means unknown; lookup failures are propagated so a
// storage outage cannot masquerade as a validation rejection.
func (s *Service) IsKnown(name string) (bool, error) {
	dt, err := s.repo.GetByName(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		s.logger.Error("data type lookup failed", "error", err, "name", name)
		return false, err
	}
	return dt.IsActive, nil
}
