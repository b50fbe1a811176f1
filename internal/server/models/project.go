package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/common"
)

// Phase is the project's lifecycle stage. Any phase may follow any other.
type Phase string

const (
	PhaseDesign      Phase = "design"
	PhaseDevelopment Phase = "development"
	PhaseTesting     Phase = "testing"
	PhaseDeployment  Phase = "deployment"
	PhaseComplete    Phase = "complete"
)

// Phases lists every valid phase in lifecycle order.
var Phases = []Phase{PhaseDesign, PhaseDevelopment, PhaseTesting, PhaseDeployment, PhaseComplete}

func (p Phase) Valid() bool {
	for _, v := range Phases {
		if p == v {
			return true
		}
	}
	return false
}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(common.DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(common.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Value stores the date as a plain string so the driver sends a DATE literal.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts the time.Time pgx returns for DATE columns, or a string.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Project is a row of the projects table.
type Project struct {
	ID               int64     `json:"pid"`
	UserID           int64     `json:"uid"`
	Title            string    `json:"title"`
	StartDate        Date      `json:"start_date"`
	EndDate          *Date     `json:"end_date"`
	ShortDescription string    `json:"short_description"`
	Phase            Phase     `json:"phase"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProjectInput carries the client-settable fields of a project. Owner, id
// and creation time are never part of it.
type ProjectInput struct {
	Title            string
	StartDate        Date
	EndDate          *Date
	ShortDescription string
	Phase            Phase
}

// ProjectSummary is a public listing row: a project with its owner's name.
type ProjectSummary struct {
	ID               int64     `json:"pid"`
	Title            string    `json:"title"`
	StartDate        Date      `json:"start_date"`
	ShortDescription string    `json:"short_description"`
	Phase            Phase     `json:"phase"`
	CreatedAt        time.Time `json:"created_at"`
	UserName         string    `json:"username"`
}

// ProjectDetails is the public single-project view. The owner's email is
// deliberately exposed.
type ProjectDetails struct {
	ID               int64     `json:"pid"`
	Title            string    `json:"title"`
	StartDate        Date      `json:"start_date"`
	EndDate          *Date     `json:"end_date"`
	ShortDescription string    `json:"short_description"`
	Phase            Phase     `json:"phase"`
	CreatedAt        time.Time `json:"created_at"`
	UserName         string    `json:"username"`
	OwnerEmail       string    `json:"owner_email"`
}

// SearchFilter narrows a public search. Zero values mean "no condition".
type SearchFilter struct {
	Title     string
	StartDate *Date
}
