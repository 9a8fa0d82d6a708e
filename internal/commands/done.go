package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles completion, so running
// it twice reopens the task.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string      { return "todo done <ref>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	t, err := findTask(ctx, svc, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := svc.ToggleCompletion(ctx, t); err != nil {
		return failTitle(errOut, err, t.Title)
	}

	if !cfg.Quiet {
		if t.IsCompleted {
			fmt.Fprintln(out, "reopened")
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
