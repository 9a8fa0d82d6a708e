package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command. The stored token is only used by
// the googletasks import source and the lists command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authenticate with Google for the googletasks import" }
func (c *LoginCmd) Usage() string      { return "todo login [common flags]" }
func (c *LoginCmd) NeedsService() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		printOAuthSetup(errOut, cfg)
		return exitcode.AuthError
	}

	if cfg.HasToken() && googletasks.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	flow := &googletasks.LoopbackFlow{
		Config: oauthConfig,
		Prompt: func(authURL string) {
			fmt.Fprintln(errOut, "Open this URL in your browser:")
			fmt.Fprintln(errOut, authURL)
		},
	}
	token, err := flow.Run(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
		if cfg.Import.Source != config.SourceGoogleTasks {
			fmt.Fprintf(errOut, "note: set import.source: %s in %s to import from Google Tasks\n", config.SourceGoogleTasks, cfg.ConfigPath())
		}
	}
	return exitcode.Success
}

func printOAuthSetup(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(w, "Importing from Google Tasks needs a desktop OAuth client:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "1. Enable the Google Tasks API for a project at")
	fmt.Fprintln(w, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(w, "2. Create an OAuth client ID of type 'Desktop app' and download its JSON")
	fmt.Fprintf(w, "3. Save it as %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Then run 'todo login' again.")
}
