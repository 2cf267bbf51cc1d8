// Package commands implements the CLI commands for roster.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/roster/internal/app"
	"go.trai.ch/roster/internal/build"
)

// CLI represents the command line interface for roster.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Init(opts app.InitOptions) error
	List(ctx context.Context, opts app.ListOptions) error
	Size(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string) error
	Watch(ctx context.Context, opts app.WatchOptions) error
	Browse(ctx context.Context, opts app.BrowseCmdOptions) error
	RecentAdd(ctx context.Context, paths []string) error
	RecentList(ctx context.Context, opts app.RecentListOptions) error
	RecentRemove(ctx context.Context, paths []string) error
	RecentClean(ctx context.Context) error
	RecentCheck(ctx context.Context) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "roster",
		Short:         "Browse directories and keep lists of recently used paths",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("json", false, "Log as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = c.initApp

	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newSizeCmd())
	rootCmd.AddCommand(c.newCopyCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newBrowseCmd())
	rootCmd.AddCommand(c.newRecentCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) initApp(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	configPath, _ := cmd.Flags().GetString("config")
	jsonMode, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return c.app.Init(app.InitOptions{
		ConfigPath: configPath,
		JSON:       jsonMode,
		Verbose:    verbose,
	})
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
