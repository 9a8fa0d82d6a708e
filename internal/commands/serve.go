package commands

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/pflag"

	"todo/internal/api"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Serve the task API over HTTP" }
func (c *ServeCmd) Usage() string      { return "todo serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsService() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	logger := log.New(errOut, "", log.LstdFlags)
	if cfg.Quiet {
		logger.SetOutput(io.Discard)
	}

	svc.Load(ctx)
	srv := api.NewServer(svc, logger)
	if err := srv.Run(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
