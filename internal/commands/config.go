package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string       { return "config" }
func (c *ConfigCmd) Aliases() []string  { return nil }
func (c *ConfigCmd) Synopsis() string   { return "Print the effective configuration" }
func (c *ConfigCmd) Usage() string      { return "todo config [common flags]" }
func (c *ConfigCmd) NeedsService() bool { return false }

func (c *ConfigCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to encode configuration: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "# %s\n", cfg.ConfigPath())
	}
	fmt.Fprint(out, string(data))
	return exitcode.Success
}
