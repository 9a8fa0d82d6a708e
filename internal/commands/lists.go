package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command. It prints the Google Tasks lists
// that import.google_list can name.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "Print Google Tasks lists available for import" }
func (c *ListsCmd) Usage() string      { return "todo lists [common flags]" }
func (c *ListsCmd) NeedsService() bool { return false }

func (c *ListsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n", cfg.Dir)
		return exitcode.AuthError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return exitcode.AuthError
	}

	client, err := googletasks.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	lists, err := client.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	for _, list := range lists {
		output.FormatListName(out, list)
	}

	return exitcode.Success
}
