package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mpetrenko/hrauth/internal/common"
	"github.com/mpetrenko/hrauth/internal/server/models"
	"github.com/mpetrenko/hrauth/internal/server/repositories/repomanager"
)

// EmployeeService is a thin pass-through to the record store. It carries no
// authorization logic; access decisions are made by the guard in front of it.
type EmployeeService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewEmployeeService(db *sql.DB, m repomanager.RepositoryManager) *EmployeeService {
	return &EmployeeService{db: db, repos: m}
}

func (s *EmployeeService) Create(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	if e.Status == "" {
		e.Status = "active"
	}
	created, err := s.repos.Employees(s.db).Insert(ctx, e)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateIdentity) {
			return nil, common.ErrorDuplicateIdentity
		}
		return nil, common.ErrorInternal
	}
	return created, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	e, err := s.repos.Employees(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return e, nil
}

func (s *EmployeeService) List(ctx context.Context) ([]*models.Employee, error) {
	list, err := s.repos.Employees(s.db).List(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return list, nil
}

// Update rewrites the record read-modify-write style: the caller supplies the
// version it read, and a concurrent writer surfaces as ErrVersionConflict.
func (s *EmployeeService) Update(ctx context.Context, e *models.Employee) error {
	err := s.repos.Employees(s.db).Update(ctx, e)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrVersionConflict):
			return common.ErrVersionConflict
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		default:
			return common.ErrorInternal
		}
	}
	return nil
}
