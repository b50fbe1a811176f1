// Package api is the HTTP client for the projectboard REST API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/client/models"
	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/dmitrijs2005/projectboard/internal/netx"
)

// Session is what register and login hand back.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// SearchQuery filters a public search; empty fields are not sent.
type SearchQuery struct {
	Title     string
	StartDate string
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("module", "api"),
	}
}

// SetToken sets the bearer token sent on every request. An empty token
// sends none.
func (c *Client) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (string, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.token)
	}

	start := time.Now()
	status, raw, err := netx.SendJSON(ctx, c.http, method, c.baseURL+path, header, body)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "path", path, "error", err.Error())
		if netx.IsUnavailable(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("request error: %w", err)
	}

	c.logger.Debug(ctx, "request served", "method", method, "path", path,
		"status", status, "duration", time.Since(start).String())

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if status >= 300 {
				return "", &Error{Status: status}
			}
			return "", fmt.Errorf("decode response: %w", err)
		}
	}

	if status >= 300 || !env.Success {
		return "", &Error{Status: status, Message: env.Message, Fields: env.Errors}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
	}
	return env.Message, nil
}

func (c *Client) Register(ctx context.Context, userName, email, password string) (*Session, error) {
	req := map[string]string{"username": userName, "email": email, "password": password}
	s := &Session{}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/register", req, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*Session, error) {
	req := map[string]string{"usernameOrEmail": usernameOrEmail, "password": password}
	s := &Session{}
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/login", req, s); err != nil {
		return nil, err
	}
	return s, nil
}

type projectsResponse struct {
	Projects []models.Project `json:"projects"`
}

type projectResponse struct {
	Project models.Project `json:"project"`
}

func (c *Client) list(ctx context.Context, path string) ([]models.Project, error) {
	var r projectsResponse
	if _, err := c.do(ctx, http.MethodGet, path, nil, &r); err != nil {
		return nil, err
	}
	return r.Projects, nil
}

// Projects lists every project, newest first.
func (c *Client) Projects(ctx context.Context) ([]models.Project, error) {
	return c.list(ctx, "/api/projects")
}

func (c *Client) Search(ctx context.Context, q SearchQuery) ([]models.Project, error) {
	v := url.Values{}
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	path := "/api/projects/search/query"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	return c.list(ctx, path)
}

// Mine lists the caller's own projects. Requires a token.
func (c *Client) Mine(ctx context.Context) ([]models.Project, error) {
	return c.list(ctx, "/api/projects/mine/list")
}

func projectPath(id int64) string {
	return "/api/projects/" + strconv.FormatInt(id, 10)
}

func (c *Client) Project(ctx context.Context, id int64) (*models.Project, error) {
	var r projectResponse
	if _, err := c.do(ctx, http.MethodGet, projectPath(id), nil, &r); err != nil {
		return nil, err
	}
	return &r.Project, nil
}

func (c *Client) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var r projectResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/projects", in, &r); err != nil {
		return nil, err
	}
	return &r.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	var r projectResponse
	if _, err := c.do(ctx, http.MethodPut, projectPath(id), in, &r); err != nil {
		return nil, err
	}
	return &r.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, projectPath(id), nil, nil)
	return err
}

// Health checks liveness, and with db also store connectivity. It returns
// the server's status message.
func (c *Client) Health(ctx context.Context, db bool) (string, error) {
	path := "/api/health"
	if db {
		path += "/db"
	}
	return c.do(ctx, http.MethodGet, path, nil, nil)
}
