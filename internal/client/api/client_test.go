package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/client/models"
	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

func newServer(t *testing.T, status int, resp string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.RawQuery
		rec.Auth = r.Header.Get("Authorization")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", time.Second, logging.Nop{}), rec
}

func TestClient_Register(t *testing.T) {
	c, rec := newServer(t, http.StatusCreated,
		`{"success":true,"message":"User registered successfully.","user":{"uid":1,"username":"alice","email":"a@x.com"},"token":"tok"}`)

	s, err := c.Register(context.Background(), "alice", "a@x.com", "longpass1")
	require.NoError(t, err)

	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, int64(1), s.User.ID)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/auth/register", rec.Path)
	assert.Equal(t, map[string]any{"username": "alice", "email": "a@x.com", "password": "longpass1"}, rec.Body)
	assert.Empty(t, rec.Auth)
}

func TestClient_LoginInvalidCredentials(t *testing.T) {
	c, rec := newServer(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`)

	_, err := c.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, "alice", rec.Body["usernameOrEmail"])
}

func TestClient_ValidationErrorCarriesFields(t *testing.T) {
	c, _ := newServer(t, http.StatusBadRequest,
		`{"success":false,"message":"Validation failed","errors":[{"field":"title","message":"Title must be between 3 and 150 characters."}]}`)

	_, err := c.CreateProject(context.Background(), models.ProjectInput{Title: "x"})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "title", apiErr.Fields[0].Field)
	assert.Contains(t, err.Error(), "title: Title must be")
	assert.Nil(t, errors.Unwrap(err))
}

func TestClient_ProjectsAndToken(t *testing.T) {
	c, rec := newServer(t, http.StatusOK,
		`{"success":true,"projects":[{"pid":2,"title":"B","start_date":"2024-02-01","phase":"design","username":"bob"},{"pid":1,"title":"A","start_date":"2024-01-01","phase":"testing","username":"alice"}]}`)
	c.SetToken("tok")

	list, err := c.Mine(context.Background())
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, "/api/projects/mine/list", rec.Path)
	assert.Equal(t, "Bearer tok", rec.Auth)

	c.SetToken("")
	_, err = c.Projects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/projects", rec.Path)
	assert.Empty(t, rec.Auth)
}

func TestClient_SearchQuery(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"success":true,"projects":[]}`)

	list, err := c.Search(context.Background(), SearchQuery{Title: "Alpha One", StartDate: "2024-01-01"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "/api/projects/search/query", rec.Path)
	assert.Equal(t, "startDate=2024-01-01&title=Alpha+One", rec.Query)

	_, err = c.Search(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, rec.Query)
}

func TestClient_ProjectCRUD(t *testing.T) {
	c, rec := newServer(t, http.StatusOK,
		`{"success":true,"project":{"pid":5,"title":"Site Redesign","start_date":"2024-01-01","end_date":null,"short_description":"Revamp marketing site","phase":"testing","owner_email":"a@x.com"}}`)

	p, err := c.Project(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.OwnerEmail)
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/api/projects/5", rec.Path)

	in := models.ProjectInput{Title: "Site Redesign", StartDate: "2024-01-01", ShortDescription: "Revamp marketing site", Phase: "testing"}
	p, err = c.UpdateProject(context.Background(), 5, in)
	require.NoError(t, err)
	assert.Equal(t, "testing", p.Phase)
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "testing", rec.Body["phase"])
	_, hasEnd := rec.Body["end_date"]
	assert.False(t, hasEnd)

	_, err = c.CreateProject(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/projects", rec.Path)

	require.NoError(t, c.DeleteProject(context.Background(), 5))
	assert.Equal(t, http.MethodDelete, rec.Method)
}

func TestClient_StatusSentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _ := newServer(t, tt.status, `{"success":false,"message":"nope"}`)
			err := c.DeleteProject(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_NonJSONError(t *testing.T) {
	c, _ := newServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := c.Health(context.Background(), false)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", err.Error())
}

func TestClient_Health(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"success":true,"message":"API and database are running","dbTest":{"result":1}}`)

	msg, err := c.Health(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "API and database are running", msg)
	assert.Equal(t, "/api/health/db", rec.Path)
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := ts.URL
	ts.Close()

	c := NewClient(addr, time.Second, logging.Nop{})
	_, err := c.Projects(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_LogsRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"API is running"}`))
	}))
	t.Cleanup(ts.Close)

	var buf bytes.Buffer
	c := NewClient(ts.URL, time.Second, logging.NewJSONLogger(&buf, "debug"))

	_, err := c.Health(context.Background(), false)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"request served"`)
	assert.Contains(t, buf.String(), `"path":"/api/health"`)
	assert.Contains(t, buf.String(), `"module":"api"`)
}
