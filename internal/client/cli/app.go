package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/projectboard/internal/client/api"
	"github.com/dmitrijs2005/projectboard/internal/client/config"
	"github.com/dmitrijs2005/projectboard/internal/client/models"
	"github.com/dmitrijs2005/projectboard/internal/client/session"
	"github.com/dmitrijs2005/projectboard/internal/logging"
)

// projectAPI is the part of api.Client the commands use.
type projectAPI interface {
	SetToken(token string)
	Register(ctx context.Context, userName, email, password string) (*api.Session, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*api.Session, error)
	Projects(ctx context.Context) ([]models.Project, error)
	Search(ctx context.Context, q api.SearchQuery) ([]models.Project, error)
	Mine(ctx context.Context) ([]models.Project, error)
	Project(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	Health(ctx context.Context, db bool) (string, error)
}

type sessionStore interface {
	Load() (*session.Session, error)
	Save(s *session.Session) error
	Clear() error
}

var (
	errNotLoggedIn    = errors.New("not logged in, use 'login' or 'register' first")
	errSessionExpired = errors.New("session expired, please log in again")
)

type App struct {
	config   *config.Config
	api      projectAPI
	sessions sessionStore
	session  *session.Session
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp builds the API client and restores a saved session, if any.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	store := session.NewFileStore(c.SessionFile)
	client := api.NewClient(c.ServerURL, c.RequestTimeout, logger)

	return newApp(c, client, store, os.Stdin, os.Stdout)
}

func newApp(c *config.Config, client projectAPI, store sessionStore, in io.Reader, out io.Writer) (*App, error) {
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}
	if sess != nil {
		client.SetToken(sess.Token)
	}

	return &App{
		config:   c,
		api:      client,
		sessions: store,
		session:  sess,
		reader:   bufio.NewReader(in),
		out:      out,
	}, nil
}

// Run starts the REPL and blocks until the user leaves.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "Welcome to projectboard CLI (%s), type 'help' for commands\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.session.User.UserName)
}

func (a *App) startSession(s *api.Session) error {
	sess := &session.Session{User: s.User, Token: s.Token}
	if err := a.sessions.Save(sess); err != nil {
		return err
	}
	a.session = sess
	a.api.SetToken(s.Token)
	return nil
}

func (a *App) endSession() error {
	a.session = nil
	a.api.SetToken("")
	return a.sessions.Clear()
}

// protected maps a 401 on a signed-in call to errSessionExpired and drops
// the stale session.
func (a *App) protected(err error) error {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	if clearErr := a.endSession(); clearErr != nil {
		return errors.Join(errSessionExpired, clearErr)
	}
	return errSessionExpired
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}
