package projects

import (
	"context"

	"github.com/dmitrijs2005/projectboard/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.ProjectSummary, error)
	GetDetails(ctx context.Context, id int64) (*models.ProjectDetails, error)
	Search(ctx context.Context, f models.SearchFilter) ([]models.ProjectSummary, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.Project, error)
	GetOwner(ctx context.Context, id int64) (int64, error)
	Create(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}
