package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/broady/taskmaster/task"
)

type ListCmd struct {
	Priority string `help:"Only show this priority: All, High, Medium or Low." short:"p"`
	Status   string `help:"Only show this status: All, Completed or Incomplete." short:"s"`
	JSON     bool   `help:"Print JSON instead of a table." name:"json"`
}

func (c *ListCmd) Run(rt *runtime, g *Globals) error {
	priority, err := task.ParsePriorityFilter(c.Priority)
	if err != nil {
		return usageError{err}
	}
	status, err := task.ParseStatusFilter(c.Status)
	if err != nil {
		return usageError{err}
	}
	api, err := rt.client(g)
	if err != nil {
		return err
	}

	tasks, err := api.List(rt.ctx, task.Filter{Priority: priority, Status: status})
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(rt.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(rt.stdout, "No tasks.")
		return nil
	}
	return printTasks(rt.stdout, tasks)
}

func printTasks(out io.Writer, tasks []task.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tDUE\tTITLE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, done, t.Priority, t.DueDate, t.Title)
	}
	return w.Flush()
}

type AddCmd struct {
	Title    []string `arg:"" help:"Task title."`
	Priority string   `help:"High, Medium or Low, in any letter case." short:"p" default:"Medium"`
	Due      string   `help:"Due date as YYYY-MM-DD." short:"d" required:""`
}

func (c *AddCmd) Run(rt *runtime, g *Globals) error {
	draft := task.Draft{
		Title:    strings.Join(c.Title, " "),
		Priority: c.Priority,
		DueDate:  c.Due,
	}
	if errs := draft.Validate(); len(errs) > 0 {
		return usageError{fieldErrors(errs)}
	}
	n, _ := draft.Normalize()

	api, err := rt.client(g)
	if err != nil {
		return err
	}
	t, err := api.Create(rt.ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.stdout, "Created %s: %s\n", t.ID, t.Title)
	return nil
}

type EditCmd struct {
	ID       string `arg:"" help:"Task ID."`
	Title    string `help:"New title." short:"t"`
	Priority string `help:"New priority: High, Medium or Low, in any letter case." short:"p"`
	Due      string `help:"New due date as YYYY-MM-DD." short:"d"`
}

// patch builds the update from the flags that were given, checking each with
// the same rules as the create form.
func (c *EditCmd) patch() (task.Patch, error) {
	var p task.Patch
	errs := task.FieldErrors{}
	if c.Title != "" {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			errs["title"] = "Title is required."
		}
		p.Title = &title
	}
	if c.Priority != "" {
		pr, ok := task.ParsePriority(c.Priority)
		if !ok {
			errs["priority"] = "Priority must be High, Medium, or Low."
		}
		p.Priority = &pr
	}
	if c.Due != "" {
		due := strings.TrimSpace(c.Due)
		if !task.IsFullISODate(due) {
			errs["dueDate"] = "Date must be in YYYY-MM-DD format."
		}
		p.DueDate = &due
	}
	if len(errs) > 0 {
		return task.Patch{}, fieldErrors(errs)
	}
	if p.IsEmpty() {
		return task.Patch{}, errors.New("nothing to change: pass --title, --priority or --due")
	}
	return p, nil
}

func (c *EditCmd) Run(rt *runtime, g *Globals) error {
	p, err := c.patch()
	if err != nil {
		return usageError{err}
	}
	api, err := rt.client(g)
	if err != nil {
		return err
	}
	t, err := api.Update(rt.ctx, c.ID, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.stdout, "Updated %s: %s (%s, due %s)\n", t.ID, t.Title, t.Priority, t.DueDate)
	return nil
}

type DoneCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *DoneCmd) Run(rt *runtime, g *Globals) error {
	return setCompleted(rt, g, c.ID, true)
}

type UndoneCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *UndoneCmd) Run(rt *runtime, g *Globals) error {
	return setCompleted(rt, g, c.ID, false)
}

func setCompleted(rt *runtime, g *Globals, id string, done bool) error {
	api, err := rt.client(g)
	if err != nil {
		return err
	}
	t, err := api.Update(rt.ctx, id, task.SetCompleted(done))
	if err != nil {
		return err
	}
	state := "not completed"
	if t.Completed {
		state = "completed"
	}
	fmt.Fprintf(rt.stdout, "%s: %s is %s\n", t.ID, t.Title, state)
	return nil
}

type RmCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *RmCmd) Run(rt *runtime, g *Globals) error {
	api, err := rt.client(g)
	if err != nil {
		return err
	}
	if err := api.Delete(rt.ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(rt.stdout, "Deleted %s\n", c.ID)
	return nil
}

// fieldErrors renders form errors in a stable order.
func fieldErrors(errs task.FieldErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, errs[field]))
	}
	return errors.New(strings.Join(msgs, "; "))
}
