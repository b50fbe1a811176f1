package rest

import (
	"strings"

	"github.com/dmitrijs2005/projectboard/internal/server/models"
)

type registerRequest struct {
	UserName string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *registerRequest) normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *registerRequest) messages() map[string]string {
	return map[string]string{
		"username": "Username must be between 3 and 50 characters.",
		"email":    "A valid email address is required.",
		"password": "Password must be at least 8 characters long.",
	}
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

func (r *loginRequest) normalize() {
	r.UsernameOrEmail = strings.TrimSpace(r.UsernameOrEmail)
}

func (r *loginRequest) messages() map[string]string {
	return map[string]string{
		"usernameOrEmail": "Username or email is required.",
		"password":        "Password is required.",
	}
}

// projectRequest is the body of both create and update. An empty end_date
// means the project has none.
type projectRequest struct {
	Title            string `json:"title" validate:"required,min=3,max=150"`
	StartDate        string `json:"start_date" validate:"required,isodate"`
	EndDate          string `json:"end_date" validate:"omitempty,isodate"`
	ShortDescription string `json:"short_description" validate:"required,min=10,max=255"`
	Phase            string `json:"phase" validate:"required,phase"`
}

func (r *projectRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ShortDescription = strings.TrimSpace(r.ShortDescription)
}

func (r *projectRequest) messages() map[string]string {
	return map[string]string{
		"title":             "Title must be between 3 and 150 characters.",
		"start_date":        "Start date must be a valid date in YYYY-MM-DD format.",
		"end_date":          "End date must be a valid date in YYYY-MM-DD format.",
		"short_description": "Short description must be between 10 and 255 characters.",
		"phase":             "Phase must be one of: design, development, testing, deployment, complete.",
	}
}

// input converts an already validated request.
func (r *projectRequest) input() models.ProjectInput {
	start, _ := parseISODate(r.StartDate)
	in := models.ProjectInput{
		Title:            r.Title,
		StartDate:        start,
		ShortDescription: r.ShortDescription,
		Phase:            models.Phase(r.Phase),
	}
	if r.EndDate != "" {
		end, _ := parseISODate(r.EndDate)
		in.EndDate = &end
	}
	return in
}
