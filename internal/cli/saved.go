package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/recipe-assistant/backend/internal/view"
)

func newSavedCmd(opts *options, load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved recipes",
	}
	cmd.AddCommand(
		newSavedListCmd(opts, load),
		newSavedRemoveCmd(opts, load),
		newSavedExportCmd(opts, load),
	)
	return cmd
}

func newSavedListCmd(opts *options, load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the saved recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), cmd, opts, load)
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.controller.OpenSavedPanel()
			return nil
		},
	}
}

func newSavedRemoveCmd(opts *options, load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a saved recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), cmd, opts, load)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.controller.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), view.SavedCountLabel(len(sess.controller.Saved())))
			return nil
		},
	}
}

func newSavedExportCmd(opts *options, load Loader) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved recipes to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), cmd, opts, load)
			if err != nil {
				return err
			}
			defer sess.Close()

			saved := sess.controller.Saved()
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := view.WriteSavedWorkbook(f, saved); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d recipes to %s\n", len(saved), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "saved-recipes.xlsx", "Output file")
	return cmd
}
