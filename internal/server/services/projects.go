package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/server/models"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/repomanager"
)

// ProjectService implements the public catalogue and owner-only mutations.
// The ownership check and the write are separate statements; a concurrent
// delete between them surfaces as common.ErrorNotFound from the write.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager) *ProjectService {
	return &ProjectService{db: db, repomanager: m}
}

func (s *ProjectService) List(ctx context.Context) ([]models.ProjectSummary, error) {
	list, err := s.repomanager.Projects(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	return list, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.ProjectDetails, error) {
	d, err := s.repomanager.Projects(s.db).GetDetails(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting project: %w", err)
	}
	return d, nil
}

func (s *ProjectService) Search(ctx context.Context, f models.SearchFilter) ([]models.ProjectSummary, error) {
	list, err := s.repomanager.Projects(s.db).Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error searching projects: %w", err)
	}
	return list, nil
}

// Mine lists the caller's own projects.
func (s *ProjectService) Mine(ctx context.Context, userID int64) ([]models.Project, error) {
	list, err := s.repomanager.Projects(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing own projects: %w", err)
	}
	return list, nil
}

func (s *ProjectService) Create(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error) {
	p, err := s.repomanager.Projects(s.db).Create(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return p, nil
}

// Update replaces the project's fields. Missing projects yield
// common.ErrorNotFound, projects owned by someone else common.ErrorForbidden.
func (s *ProjectService) Update(ctx context.Context, userID, id int64, in models.ProjectInput) (*models.Project, error) {
	repo := s.repomanager.Projects(s.db)

	if err := s.checkOwner(ctx, userID, id); err != nil {
		return nil, err
	}

	p, err := repo.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, id int64) error {
	repo := s.repomanager.Projects(s.db)

	if err := s.checkOwner(ctx, userID, id); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting project: %w", err)
	}
	return nil
}

func (s *ProjectService) checkOwner(ctx context.Context, userID, id int64) error {
	owner, err := s.repomanager.Projects(s.db).GetOwner(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error checking project owner: %w", err)
	}
	if owner != userID {
		return common.ErrorForbidden
	}
	return nil
}
