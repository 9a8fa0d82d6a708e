package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct {
	filter string
	sort   string
}

// SetFilter sets the filter (for testing).
func (c *ListCmd) SetFilter(filter string) {
	c.filter = filter
}

// SetSort sets the sort order (for testing).
func (c *ListCmd) SetSort(order string) {
	c.sort = order
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todo list [--filter all|open|closed] [--sort newest|oldest|az|za]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.filter, "filter", "f", "", "")
	fs.StringVarP(&c.sort, "sort", "s", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := task.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	order := task.DefaultSortOrder
	if c.sort != "" {
		order, err = task.ParseSortOrder(c.sort)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	nums := refNumbers(referenceView(ctx, svc))
	svc.SetSortOrder(order)

	for _, t := range svc.FilteredView(filter) {
		output.FormatTask(out, nums[t.ID], t)
	}

	return exitcode.Success
}
