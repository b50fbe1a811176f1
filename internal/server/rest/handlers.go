package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/server/metrics"
	"github.com/dmitrijs2005/projectboard/internal/server/models"
	"github.com/dmitrijs2005/projectboard/internal/server/services"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, userName, email, password string) (*services.Session, error)
	Login(ctx context.Context, login, password string) (*services.Session, error)
}

type ProjectService interface {
	List(ctx context.Context) ([]models.ProjectSummary, error)
	Get(ctx context.Context, id int64) (*models.ProjectDetails, error)
	Search(ctx context.Context, f models.SearchFilter) ([]models.ProjectSummary, error)
	Mine(ctx context.Context, userID int64) ([]models.Project, error)
	Create(ctx context.Context, userID int64, in models.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, userID, id int64, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, userID, id int64) error
}

type HealthChecker interface {
	Ping(ctx context.Context) (int, error)
}

type AuthHandler struct {
	users   UserService
	metrics *metrics.Metrics
}

func NewAuthHandler(us UserService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{users: us, metrics: m}
}

type sessionResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	req := body[registerRequest](c)

	sess, err := h.users.Register(c.Request.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		Success: true,
		Message: "User registered successfully.",
		User:    sess.User,
		Token:   sess.Token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	req := body[loginRequest](c)

	sess, err := h.users.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			h.metrics.AuthFailure("invalid_credentials")
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		Success: true,
		Message: "Logged in successfully.",
		User:    sess.User,
		Token:   sess.Token,
	})
}

type ProjectHandler struct {
	projects ProjectService
}

func NewProjectHandler(ps ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: ps}
}

// projectID parses the :id segment. Anything that is not a positive
// integer names no project.
func projectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, common.ErrorNotFound)
		return 0, false
	}
	return id, true
}

func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": list})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": p})
}

// Search reads the optional title and startDate query parameters. A
// malformed startDate is rejected rather than ignored.
func (h *ProjectHandler) Search(c *gin.Context) {
	f := models.SearchFilter{Title: strings.TrimSpace(c.Query("title"))}

	if s := strings.TrimSpace(c.Query("startDate")); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			fail(c, validationError([]FieldError{{
				Field:   "startDate",
				Message: "Start date must be a valid date in YYYY-MM-DD format.",
			}}))
			return
		}
		f.StartDate = &d
	}

	list, err := h.projects.Search(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": list})
}

func (h *ProjectHandler) Mine(c *gin.Context) {
	list, err := h.projects.Mine(c.Request.Context(), identity(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": list})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	req := body[projectRequest](c)

	p, err := h.projects.Create(c.Request.Context(), identity(c).UserID, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Project created successfully.", "project": p})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}
	req := body[projectRequest](c)

	p, err := h.projects.Update(c.Request.Context(), identity(c).UserID, id, req.input())
	if err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			err = newStatusError(http.StatusForbidden, msgForbiddenUpdate, err)
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project updated successfully.", "project": p})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), identity(c).UserID, id); err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			err = newStatusError(http.StatusForbidden, msgForbiddenDelete, err)
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted successfully."})
}

type HealthHandler struct {
	health HealthChecker
}

func NewHealthHandler(hc HealthChecker) *HealthHandler {
	return &HealthHandler{health: hc}
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "API is running"})
}

func (h *HealthHandler) DB(c *gin.Context) {
	result, err := h.health.Ping(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API and database are running",
		"dbTest":  gin.H{"result": result},
	})
}
