// Package models holds the client-side view of API payloads.
package models

import (
	"time"
)

// Phases lists every project phase the API accepts, in lifecycle order.
var Phases = []string{"design", "development", "testing", "deployment", "complete"}

func ValidPhase(p string) bool {
	for _, v := range Phases {
		if v == p {
			return true
		}
	}
	return false
}

type User struct {
	ID        int64     `json:"uid"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a project as returned by the API. Dates stay in their
// YYYY-MM-DD wire form; the client only displays and echoes them.
// UserName and OwnerEmail are filled only by the public listing and
// detail endpoints.
type Project struct {
	ID               int64     `json:"pid"`
	UserID           int64     `json:"uid,omitempty"`
	Title            string    `json:"title"`
	StartDate        string    `json:"start_date"`
	EndDate          *string   `json:"end_date"`
	ShortDescription string    `json:"short_description"`
	Phase            string    `json:"phase"`
	CreatedAt        time.Time `json:"created_at"`
	UserName         string    `json:"username,omitempty"`
	OwnerEmail       string    `json:"owner_email,omitempty"`
}

// EndDateText returns the end date or "-" when the project is open-ended.
func (p Project) EndDateText() string {
	if p.EndDate == nil || *p.EndDate == "" {
		return "-"
	}
	return *p.EndDate
}

// ProjectInput is the body of create and update requests. Updates are
// full replacements, so every field is always sent.
type ProjectInput struct {
	Title            string `json:"title"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date,omitempty"`
	ShortDescription string `json:"short_description"`
	Phase            string `json:"phase"`
}

// InputFrom copies the editable fields of p.
func InputFrom(p Project) ProjectInput {
	in := ProjectInput{
		Title:            p.Title,
		StartDate:        p.StartDate,
		ShortDescription: p.ShortDescription,
		Phase:            p.Phase,
	}
	if p.EndDate != nil {
		in.EndDate = *p.EndDate
	}
	return in
}
