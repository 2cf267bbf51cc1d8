package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/roster/internal/app"
)

// browseFlags registers the flags shared by ls, watch and browse.
func browseFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("recursive", "R", false, "Descend into subdirectories")
	cmd.Flags().BoolP("follow-links", "L", false, "Descend through symbolic links to directories")
	cmd.Flags().BoolP("all", "a", false, "Include hidden entries")
	cmd.Flags().BoolP("long", "l", false, "Print permissions, size and modification time")
	cmd.Flags().StringP("sort", "s", "", "Sort by name, size or time")
	cmd.Flags().BoolP("reverse", "r", false, "Reverse the sort order")
}

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls [dir]",
		Aliases: []string{"list"},
		Short:   "List a directory, folders first",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.ListOptions{}
			if len(args) == 1 {
				opts.Path = args[0]
			}
			opts.Recursive, _ = cmd.Flags().GetBool("recursive")
			opts.FollowLinks, _ = cmd.Flags().GetBool("follow-links")
			opts.All, _ = cmd.Flags().GetBool("all")
			opts.Long, _ = cmd.Flags().GetBool("long")
			opts.Sort, _ = cmd.Flags().GetString("sort")
			opts.Reverse, _ = cmd.Flags().GetBool("reverse")
			return c.app.List(cmd.Context(), opts)
		},
	}
	browseFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "List a directory and relist it whenever it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.WatchOptions{}
			if len(args) == 1 {
				opts.Path = args[0]
			}
			opts.Recursive, _ = cmd.Flags().GetBool("recursive")
			opts.FollowLinks, _ = cmd.Flags().GetBool("follow-links")
			opts.All, _ = cmd.Flags().GetBool("all")
			opts.Long, _ = cmd.Flags().GetBool("long")
			opts.Sort, _ = cmd.Flags().GetString("sort")
			opts.Reverse, _ = cmd.Flags().GetBool("reverse")
			return c.app.Watch(cmd.Context(), opts)
		},
	}
	browseFlags(cmd)
	return cmd
}

func (c *CLI) newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse a directory interactively and print the selected paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.BrowseCmdOptions{}
			if len(args) == 1 {
				opts.Path = args[0]
			}
			opts.Recursive, _ = cmd.Flags().GetBool("recursive")
			opts.FollowLinks, _ = cmd.Flags().GetBool("follow-links")
			opts.All, _ = cmd.Flags().GetBool("all")
			opts.Long, _ = cmd.Flags().GetBool("long")
			opts.Sort, _ = cmd.Flags().GetString("sort")
			opts.Reverse, _ = cmd.Flags().GetBool("reverse")
			opts.Mode, _ = cmd.Flags().GetString("mode")
			opts.Watch, _ = cmd.Flags().GetBool("watch")
			return c.app.Browse(cmd.Context(), opts)
		},
	}
	browseFlags(cmd)
	cmd.Flags().String("mode", "auto", "Rendering mode: auto, tui or plain")
	cmd.Flags().BoolP("watch", "w", false, "Refresh the listing when the directory changes")
	return cmd
}
