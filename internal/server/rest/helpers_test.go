package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/dbx"
	"github.com/dmitrijs2005/projectboard/internal/server/auth"
	"github.com/dmitrijs2005/projectboard/internal/server/models"
	"github.com/dmitrijs2005/projectboard/internal/server/ratelimit"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projectboard/internal/server/repositories/users"
	"github.com/dmitrijs2005/projectboard/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Mock services
// =============================================================================

type mockUserService struct {
	registerFunc func(ctx context.Context, userName, email, password string) (*services.Session, error)
	loginFunc    func(ctx context.Context, login, password string) (*services.Session, error)
}

func (m *mockUserService) Register(ctx context.Context, userName, email, password string) (*services.Session, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, userName, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) Login(ctx context.Context, login, password string) (*services.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, login, password)
	}
	return nil, errNotImplemented
}

type mockProjectService struct {
	listFunc   func(ctx context.Context) ([]models.ProjectSummary, error)
	getFunc    func(ctx context.Context, id int64) (*models.ProjectDetails, error)
	searchFunc func(ctx context.Context, f models.SearchFilter) ([]models.ProjectSummary, error)
	mineFunc   func(ctx context.Context, userID int64) ([]models.Project, error)
	createFunc func(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error)
	updateFunc func(ctx context.Context, userID, id int64, in models.ProjectInput) (*models.Project, error)
	deleteFunc func(ctx context.Context, userID, id int64) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockProjectService) List(ctx context.Context) ([]models.ProjectSummary, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *mockProjectService) Get(ctx context.Context, id int64) (*models.ProjectDetails, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *mockProjectService) Search(ctx context.Context, f models.SearchFilter) ([]models.ProjectSummary, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, f)
	}
	return nil, errNotImplemented
}

func (m *mockProjectService) Mine(ctx context.Context, userID int64) ([]models.Project, error) {
	if m.mineFunc != nil {
		return m.mineFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *mockProjectService) Create(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, in)
	}
	return nil, errNotImplemented
}

func (m *mockProjectService) Update(ctx context.Context, userID, id int64, in models.ProjectInput) (*models.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, userID, id, in)
	}
	return nil, errNotImplemented
}

func (m *mockProjectService) Delete(ctx context.Context, userID, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, id)
	}
	return errNotImplemented
}

type mockHealth struct {
	result int
	err    error
}

func (m *mockHealth) Ping(context.Context) (int, error) { return m.result, m.err }

// =============================================================================
// Test Helpers
// =============================================================================

func tokenFor(t *testing.T, uid int64, name string) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Identity{UserID: uid, UserName: name, Email: name + "@x.com"}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func newTestRouter(d Deps) *gin.Engine {
	if d.Users == nil {
		d.Users = &mockUserService{}
	}
	if d.Projects == nil {
		d.Projects = &mockProjectService{}
	}
	if d.Health == nil {
		d.Health = &mockHealth{result: 1}
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.NewMemoryLimiter(1000, time.Minute)
	}
	if d.Secret == nil {
		d.Secret = testSecret
	}
	if d.CORSOrigin == "" {
		d.CORSOrigin = "*"
	}
	return NewRouter(d)
}

type response struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) response {
	t.Helper()

	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Header: rec.Header()}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out.Body), "body: %s", rec.Body.String())
	}
	return out
}

func fieldNames(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["errors"].([]any)
	require.True(t, ok, "errors missing in %v", body)
	names := make([]string, 0, len(raw))
	for _, e := range raw {
		names = append(names, e.(map[string]any)["field"].(string))
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// In-memory repositories, used to drive the real services end to end
// =============================================================================

type memStore struct {
	mu       sync.Mutex
	users    []models.User
	projects []models.Project
	clock    time.Time
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.users {
		if strings.EqualFold(e.UserName, u.UserName) || strings.EqualFold(e.Email, u.Email) {
			return nil, common.ErrConflict
		}
	}
	u.ID = int64(len(r.s.users) + 1)
	u.CreatedAt = r.s.tick()
	r.s.users = append(r.s.users, *u)
	return u, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.users {
		if strings.EqualFold(e.UserName, login) || strings.EqualFold(e.Email, login) {
			u := e
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) ExistsByUserNameOrEmail(_ context.Context, userName, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.users {
		if strings.EqualFold(e.UserName, userName) || strings.EqualFold(e.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type memProjects struct{ s *memStore }

func (r memProjects) owner(uid int64) models.User {
	for _, u := range r.s.users {
		if u.ID == uid {
			return u
		}
	}
	return models.User{}
}

func (r memProjects) summary(p models.Project) models.ProjectSummary {
	return models.ProjectSummary{
		ID: p.ID, Title: p.Title, StartDate: p.StartDate, ShortDescription: p.ShortDescription,
		Phase: p.Phase, CreatedAt: p.CreatedAt, UserName: r.owner(p.UserID).UserName,
	}
}

func (r memProjects) find(id int64) (int, bool) {
	for i, p := range r.s.projects {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r memProjects) List(_ context.Context) ([]models.ProjectSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.ProjectSummary, 0, len(r.s.projects))
	for i := len(r.s.projects) - 1; i >= 0; i-- {
		out = append(out, r.summary(r.s.projects[i]))
	}
	return out, nil
}

func (r memProjects) GetDetails(_ context.Context, id int64) (*models.ProjectDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	p := r.s.projects[i]
	o := r.owner(p.UserID)
	return &models.ProjectDetails{
		ID: p.ID, Title: p.Title, StartDate: p.StartDate, EndDate: p.EndDate,
		ShortDescription: p.ShortDescription, Phase: p.Phase, CreatedAt: p.CreatedAt,
		UserName: o.UserName, OwnerEmail: o.Email,
	}, nil
}

func (r memProjects) Search(_ context.Context, f models.SearchFilter) ([]models.ProjectSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.ProjectSummary, 0)
	for _, p := range r.s.projects {
		if f.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.StartDate != nil && !p.StartDate.Equal(f.StartDate.Time) {
			continue
		}
		out = append(out, r.summary(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate.Time) })
	return out, nil
}

func (r memProjects) ListByOwner(_ context.Context, uid int64) ([]models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Project, 0)
	for i := len(r.s.projects) - 1; i >= 0; i-- {
		if r.s.projects[i].UserID == uid {
			out = append(out, r.s.projects[i])
		}
	}
	return out, nil
}

func (r memProjects) GetOwner(_ context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return 0, common.ErrorNotFound
	}
	return r.s.projects[i].UserID, nil
}

func (r memProjects) Create(_ context.Context, uid int64, in models.ProjectInput) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := models.Project{
		ID: int64(len(r.s.projects) + 1), UserID: uid, Title: in.Title, StartDate: in.StartDate,
		EndDate: in.EndDate, ShortDescription: in.ShortDescription, Phase: in.Phase, CreatedAt: r.s.tick(),
	}
	r.s.projects = append(r.s.projects, p)
	return &p, nil
}

func (r memProjects) Update(_ context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	p := &r.s.projects[i]
	p.Title, p.StartDate, p.EndDate, p.ShortDescription, p.Phase = in.Title, in.StartDate, in.EndDate, in.ShortDescription, in.Phase
	out := *p
	return &out, nil
}

func (r memProjects) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.find(id)
	if !ok {
		return common.ErrorNotFound
	}
	r.s.projects = append(r.s.projects[:i], r.s.projects[i+1:]...)
	return nil
}

type memRepoManager struct{ s *memStore }

func (m memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m memRepoManager) Users(dbx.DBTX) users.Repository              { return memUsers(m) }
func (m memRepoManager) Projects(dbx.DBTX) projects.Repository        { return memProjects(m) }
