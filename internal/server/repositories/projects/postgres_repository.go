package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/dbx"
	"github.com/dmitrijs2005/projectboard/internal/server/models"
)

const summaryColumns = `p.pid, p.title, p.start_date, p.short_description, p.phase, p.created_at, u.username`

const projectColumns = `pid, uid, title, start_date, end_date, short_description, phase, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(s rowScanner) (models.ProjectSummary, error) {
	var p models.ProjectSummary
	err := s.Scan(&p.ID, &p.Title, &p.StartDate, &p.ShortDescription, &p.Phase, &p.CreatedAt, &p.UserName)
	return p, err
}

func scanProject(s rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var end nullDate
	err := s.Scan(&p.ID, &p.UserID, &p.Title, &p.StartDate, &end, &p.ShortDescription, &p.Phase, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.EndDate = end.ptr()
	return p, nil
}

// nullDate scans a nullable DATE column.
type nullDate struct {
	d     models.Date
	valid bool
}

func (n *nullDate) Scan(src any) error {
	if src == nil {
		n.valid = false
		return nil
	}
	n.valid = true
	return n.d.Scan(src)
}

func (n nullDate) ptr() *models.Date {
	if !n.valid {
		return nil
	}
	d := n.d
	return &d
}

// endDateArg converts an optional end date into a driver argument.
func endDateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func (r *PostgresRepository) querySummaries(ctx context.Context, query string, args ...any) ([]models.ProjectSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ProjectSummary, 0)
	for rows.Next() {
		p, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// List returns every project with its owner's username, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]models.ProjectSummary, error) {
	query :=
		`SELECT ` + summaryColumns + `
		 FROM projects p
		 JOIN users u ON p.uid = u.uid
		 ORDER BY p.created_at DESC`

	return r.querySummaries(ctx, query)
}

func (r *PostgresRepository) GetDetails(ctx context.Context, id int64) (*models.ProjectDetails, error) {
	query :=
		`SELECT p.pid, p.title, p.start_date, p.end_date, p.short_description, p.phase, p.created_at,
		        u.username, u.email
		 FROM projects p
		 JOIN users u ON p.uid = u.uid
		 WHERE p.pid = $1`

	d := &models.ProjectDetails{}
	var end nullDate
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Title, &d.StartDate, &end, &d.ShortDescription, &d.Phase, &d.CreatedAt,
		&d.UserName, &d.OwnerEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.EndDate = end.ptr()

	return d, nil
}

// Search builds the WHERE clause from the conditions present in f; with no
// conditions it returns all projects. Results are ordered by start date.
func (r *PostgresRepository) Search(ctx context.Context, f models.SearchFilter) ([]models.ProjectSummary, error) {
	var (
		conds []string
		args  []any
	)

	if f.Title != "" {
		args = append(args, f.Title)
		conds = append(conds, fmt.Sprintf("p.title ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, f.StartDate.String())
		conds = append(conds, fmt.Sprintf("p.start_date = $%d", len(args)))
	}

	query := `SELECT ` + summaryColumns + `
		 FROM projects p
		 JOIN users u ON p.uid = u.uid`
	if len(conds) > 0 {
		query += "\n\t\t WHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\t ORDER BY p.start_date DESC"

	return r.querySummaries(ctx, query, args...)
}

// ListByOwner returns the full rows owned by userID, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64) ([]models.Project, error) {
	query :=
		`SELECT ` + projectColumns + `
		 FROM projects
		 WHERE uid = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetOwner(ctx context.Context, id int64) (int64, error) {
	query := `SELECT uid FROM projects WHERE pid = $1`

	var uid int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return uid, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error) {
	query :=
		`INSERT INTO projects (uid, title, start_date, end_date, short_description, phase)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + projectColumns

	row := r.db.QueryRowContext(ctx, query,
		userID, in.Title, in.StartDate.String(), endDateArg(in.EndDate), in.ShortDescription, string(in.Phase))

	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// Update replaces every client-settable field. Owner and creation time are
// never touched.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	query :=
		`UPDATE projects
		 SET title = $1, start_date = $2, end_date = $3, short_description = $4, phase = $5
		 WHERE pid = $6
		 RETURNING ` + projectColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Title, in.StartDate.String(), endDateArg(in.EndDate), in.ShortDescription, string(in.Phase), id)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM projects WHERE pid = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
