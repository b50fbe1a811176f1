package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/projectboard/internal/dbx"
	"github.com/dmitrijs2005/projectboard/internal/server/models"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	existsOut bool
	existsErr error

	createErr error
	created   *models.User

	getOut   *models.User
	getErr   error
	gotLogin string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = 1
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	f.gotLogin = login
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error) {
	return f.existsOut, f.existsErr
}

type fakeProjectsRepo struct {
	listOut []models.ProjectSummary
	listErr error

	detailsOut *models.ProjectDetails
	detailsErr error

	searchOut []models.ProjectSummary
	gotFilter models.SearchFilter

	mineOut []models.Project
	gotUID  int64

	owner    int64
	ownerErr error

	createOut *models.Project
	createErr error

	updateOut *models.Project
	updateErr error
	updated   bool

	deleteErr error
	deleted   bool
}

func (f *fakeProjectsRepo) List(ctx context.Context) ([]models.ProjectSummary, error) {
	return f.listOut, f.listErr
}

func (f *fakeProjectsRepo) GetDetails(ctx context.Context, id int64) (*models.ProjectDetails, error) {
	return f.detailsOut, f.detailsErr
}

func (f *fakeProjectsRepo) Search(ctx context.Context, fl models.SearchFilter) ([]models.ProjectSummary, error) {
	f.gotFilter = fl
	return f.searchOut, nil
}

func (f *fakeProjectsRepo) ListByOwner(ctx context.Context, userID int64) ([]models.Project, error) {
	f.gotUID = userID
	return f.mineOut, nil
}

func (f *fakeProjectsRepo) GetOwner(ctx context.Context, id int64) (int64, error) {
	return f.owner, f.ownerErr
}

func (f *fakeProjectsRepo) Create(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	f.updated = true
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = true
	return f.deleteErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakeProjectsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projects.Repository     { return m.p }
