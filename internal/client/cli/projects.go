package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/projectboard/internal/client/api"
	"github.com/dmitrijs2005/projectboard/internal/client/models"
)

func (a *App) List(ctx context.Context) error {
	list, err := a.api.Projects(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderList(list, true))
	return nil
}

// Search prompts for an optional title fragment and start date. Leaving
// both empty lists everything by start date.
func (a *App) Search(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title contains (empty for any)", a.out)
	if err != nil {
		return err
	}
	startDate, err := getSimpleText(a.reader, "Start date YYYY-MM-DD (empty for any)", a.out)
	if err != nil {
		return err
	}

	list, err := a.api.Search(ctx, api.SearchQuery{Title: title, StartDate: startDate})
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderList(list, true))
	return nil
}

func (a *App) Show(ctx context.Context, id int64) error {
	p, err := a.api.Project(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderProject(p))
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	list, err := a.api.Mine(ctx)
	if err != nil {
		return a.protected(err)
	}
	fmt.Fprint(a.out, renderList(list, false))
	return nil
}

func (a *App) Create(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	in, err := a.promptProject(models.ProjectInput{})
	if err != nil {
		return err
	}

	p, err := a.api.CreateProject(ctx, in)
	if err != nil {
		return a.protected(err)
	}
	fmt.Fprintf(a.out, "Created project %d\n", p.ID)
	return nil
}

// Edit fetches the project, prompts for each field with the current value
// as default and sends the full replacement.
func (a *App) Edit(ctx context.Context, id int64) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	current, err := a.api.Project(ctx, id)
	if err != nil {
		return err
	}

	in, err := a.promptProject(models.InputFrom(*current))
	if err != nil {
		return err
	}

	p, err := a.api.UpdateProject(ctx, id, in)
	if err != nil {
		return a.protected(err)
	}
	fmt.Fprintf(a.out, "Updated project %d\n", p.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, id int64) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete project %d? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.DeleteProject(ctx, id); err != nil {
		return a.protected(err)
	}
	fmt.Fprintf(a.out, "Deleted project %d\n", id)
	return nil
}

func (a *App) Health(ctx context.Context) error {
	msg, err := a.api.Health(ctx, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)

	msg, err = a.api.Health(ctx, true)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// promptProject asks for every editable field, offering cur as defaults.
// A "-" end date clears it.
func (a *App) promptProject(cur models.ProjectInput) (models.ProjectInput, error) {
	var (
		in  models.ProjectInput
		err error
	)

	if in.Title, err = GetWithDefault(a.reader, "Title", cur.Title, a.out); err != nil {
		return in, err
	}
	if in.StartDate, err = GetWithDefault(a.reader, "Start date (YYYY-MM-DD)", cur.StartDate, a.out); err != nil {
		return in, err
	}
	if in.EndDate, err = GetWithDefault(a.reader, "End date (YYYY-MM-DD, optional, - for none)", cur.EndDate, a.out); err != nil {
		return in, err
	}
	if in.EndDate == "-" {
		in.EndDate = ""
	}
	if in.ShortDescription, err = GetWithDefault(a.reader, "Short description", cur.ShortDescription, a.out); err != nil {
		return in, err
	}

	phasePrompt := "Phase (" + strings.Join(models.Phases, ", ") + ")"
	for {
		if in.Phase, err = GetWithDefault(a.reader, phasePrompt, cur.Phase, a.out); err != nil {
			return in, err
		}
		if models.ValidPhase(in.Phase) {
			break
		}
		fmt.Fprintln(a.out, errorStyle.Render("Unknown phase: "+in.Phase))
	}

	return in, nil
}
