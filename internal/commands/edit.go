package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only flags that were given change
// the task.
type EditCmd struct {
	title      string
	details    string
	start      string
	end        string
	clearTimes bool

	flags *pflag.FlagSet
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "todo edit [--title <t>] [--details <d>] [--start HH:MM] [--end HH:MM] [--clear-times] <ref>"
}
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.flags = fs
	fs.StringVarP(&c.title, "title", "t", "", "")
	fs.StringVarP(&c.details, "details", "d", "", "")
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
	fs.BoolVar(&c.clearTimes, "clear-times", false, "")
}

func (c *EditCmd) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !c.changed("title") && !c.changed("details") && !c.changed("start") && !c.changed("end") && !c.clearTimes {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	t, err := findTask(ctx, svc, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if c.changed("title") {
		title := strings.TrimSpace(c.title)
		if err := checkTitleLength(title); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		t.Title = title
	}
	if c.changed("details") {
		t.Details = c.details
	}
	if c.clearTimes {
		t.StartTime = nil
		t.EndTime = nil
	}
	if c.changed("start") {
		if t.StartTime, err = parseClock(c.start); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if c.changed("end") {
		if t.EndTime, err = parseClock(c.end); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	if err := svc.Update(ctx, t); err != nil {
		return failTitle(errOut, err, t.Title)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
