package commands

import "github.com/spf13/cobra"

func (c *CLI) newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "du [path]",
		Aliases: []string{"size"},
		Short:   "Print the total size of a tree, not counting symbolic links",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return c.app.Size(cmd.Context(), path)
		},
	}
}

func (c *CLI) newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cp <src> <dst>",
		Aliases: []string{"copy"},
		Short:   "Copy a file",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Copy(cmd.Context(), args[0], args[1])
		},
	}
}
