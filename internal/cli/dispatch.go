// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the store and importer during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	if _, ok := d.registry.Find(cmdName); !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	code := exitcode.Success
	root := d.newRoot(&code, out, errOut)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return code
}

// newRoot builds a cobra command tree from the registry. Each registered
// command's exit code is stored in code.
func (d *Dispatcher) newRoot(code *int, out, errOut io.Writer) *cobra.Command {
	var flags commonFlags

	root := &cobra.Command{
		Use:           "todo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config", "", "")
	pf.BoolVar(&flags.quiet, "quiet", false, "")
	pf.BoolVar(&flags.debug, "debug", false, "")

	for _, cmd := range d.registry.All() {
		cc := d.wrap(cmd, &flags, code, out, errOut)
		if cmd.Name() == "help" {
			root.SetHelpCommand(cc)
			continue
		}
		root.AddCommand(cc)
	}

	// --help on any command prints that command's usage line.
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		if cmd, ok := d.registry.Find(c.Name()); ok && c != root {
			fmt.Fprintf(out, "Usage:\n  %s\n", cmd.Usage())
			return
		}
		if help, ok := d.registry.Find("help"); ok {
			help.Run(c.Context(), nil, nil, nil, out, errOut)
		}
	})

	return root
}

func (d *Dispatcher) wrap(cmd commands.Command, flags *commonFlags, code *int, out, errOut io.Writer) *cobra.Command {
	cc := &cobra.Command{
		Use:     cmd.Name(),
		Aliases: cmd.Aliases(),
		Short:   cmd.Synopsis(),
		Args:    cobra.ArbitraryArgs,
		RunE: func(c *cobra.Command, args []string) error {
			*code = d.dispatchCommand(c.Context(), cmd, flags, args, out, errOut)
			return nil
		},
	}
	cmd.RegisterFlags(cc.Flags())
	return cc
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, flags *commonFlags, args []string, out, errOut io.Writer) int {
	cfg, err := config.New(flags.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = flags.quiet
	cfg.Debug = flags.debug

	var svc service.Service
	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no task store configured")
			return exitcode.BackendError
		}
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			if strings.Contains(err.Error(), "token") || strings.Contains(err.Error(), "oauth") {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		if closer, ok := svc.(io.Closer); ok {
			defer closer.Close()
		}
	}

	return cmd.Run(ctx, cfg, svc, args, out, errOut)
}
