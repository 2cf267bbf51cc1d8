package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/roster/internal/app"
)

func (c *CLI) newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Manage the list of recently used paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.RecentList(cmd.Context(), app.RecentListOptions{})
		},
	}

	add := &cobra.Command{
		Use:   "add <path>...",
		Short: "Record paths as used now",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.RecentAdd(cmd.Context(), args)
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the list, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			check, _ := cmd.Flags().GetBool("check")
			all, _ := cmd.Flags().GetBool("all")
			long, _ := cmd.Flags().GetBool("long")
			return c.app.RecentList(cmd.Context(), app.RecentListOptions{
				Check: check,
				All:   all,
				Long:  long,
			})
		},
	}
	list.Flags().Bool("check", false, "Re-validate the entries first")
	list.Flags().BoolP("all", "a", false, "Print entries beyond the size bound")
	list.Flags().BoolP("long", "l", false, "Print permissions, size and time")

	remove := &cobra.Command{
		Use:     "rm <path>...",
		Aliases: []string{"remove"},
		Short:   "Drop paths from the list",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.RecentRemove(cmd.Context(), args)
		},
	}

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove invalid entries, or everything when validity checking is off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.RecentClean(cmd.Context())
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Re-validate the entries and print the invalid ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.RecentCheck(cmd.Context())
		},
	}

	cmd.AddCommand(add, list, remove, clean, check)
	return cmd
}
