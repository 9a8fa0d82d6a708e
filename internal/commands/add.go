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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	details string
	start   string
	end     string
}

// SetDetails sets the details text (for testing).
func (c *AddCmd) SetDetails(details string) {
	c.details = details
}

// SetTimes sets the HH:MM start and end times (for testing).
func (c *AddCmd) SetTimes(start, end string) {
	c.start = start
	c.end = end
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todo add [--details <text>] [--start HH:MM] [--end HH:MM] <title...>"
}
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.details, "details", "d", "", "")
	fs.StringVar(&c.start, "start", "", "")
	fs.StringVar(&c.end, "end", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if err := checkTitleLength(title); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	start, err := parseClock(c.start)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	end, err := parseClock(c.end)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if _, err := svc.Add(ctx, title, c.details, start, end); err != nil {
		return failTitle(errOut, err, title)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
