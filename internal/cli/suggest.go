package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pageza/recipe-assistant/backend/internal/service"
	"github.com/pageza/recipe-assistant/backend/internal/view"
)

type suggestOptions struct {
	Ingredients string
	Tone        string
	PDF         string
	Save        []int
	Export      int
}

func newSuggestCmd(opts *options, load Loader) *cobra.Command {
	so := &suggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate three recipe suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := openSession(ctx, cmd, opts, load)
			if err != nil {
				return err
			}
			defer sess.Close()

			sub := service.Submission{Ingredients: so.Ingredients, Tone: so.Tone}
			if so.PDF != "" {
				data, err := os.ReadFile(so.PDF)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", so.PDF, err)
				}
				sub.File = &service.Upload{Name: filepath.Base(so.PDF), Data: data}
			}

			if _, err := sess.controller.Submit(ctx, sub); err != nil {
				// the surface holds the user-facing message
				if msg := sess.terminal.LastError(); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			for _, id := range so.Save {
				if _, ok := sess.controller.Recipe(id); !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "recipe %d is not in this batch\n", id)
					continue
				}
				if err := sess.controller.Save(ctx, id); err != nil {
					return err
				}
			}

			if so.Export != 0 {
				_, _, ok, err := sess.controller.Export(so.Export)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("recipe %d is not in this batch", so.Export)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&so.Ingredients, "ingredients", "i", "", "Comma separated ingredients")
	cmd.Flags().StringVarP(&so.Tone, "tone", "t", view.DefaultTone, "Tone of the suggestions")
	cmd.Flags().StringVar(&so.PDF, "pdf", "", "PDF to build recipes from instead of ingredients")
	cmd.Flags().IntSliceVar(&so.Save, "save", nil, "Save the recipes with these ids")
	cmd.Flags().IntVar(&so.Export, "export", 0, "Print the printable version of the recipe with this id")
	return cmd
}
