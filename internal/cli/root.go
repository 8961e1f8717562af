// Package cli is the terminal front end: the same submit pipeline and saved
// list as the web page, rendered as markdown.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageza/recipe-assistant/backend/internal/controller"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

// DefaultProfile namespaces the saved list when --profile is not given.
const DefaultProfile = "local"

// MaxProfileLength keeps the namespaced saved-list key within the store's
// 255 character key column.
const MaxProfileLength = 200

var (
	errInvalidRecipeID = errors.New("invalid recipe id")
	errProfileTooLong  = fmt.Errorf("profile name must be at most %d characters", MaxProfileLength)
	errProfileEmpty    = errors.New("profile name must not be empty")
)

type options struct {
	Profile  string
	Plain    bool
	WordWrap int
}

// NewRootCmd builds the recipes command tree. load is called once per command.
func NewRootCmd(load Loader) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Get recipe suggestions from the ingredients you have",
		Example: `  # Suggest recipes and save the second one
  recipes suggest --ingredients "eggs, tomatoes" --save 2

  # Suggest recipes from a PDF
  recipes suggest --pdf pantry.pdf

  # Show the saved list
  recipes saved list`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", DefaultProfile, "Namespace of the saved recipe list")
	cmd.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "Print markdown without terminal styling")
	cmd.PersistentFlags().IntVarP(&opts.WordWrap, "word-wrap", "w", 80, "Word wrap width for terminal rendering")

	cmd.AddCommand(newSuggestCmd(opts, load), newSavedCmd(opts, load))
	return cmd
}

// session is one command's controller over the profile's saved list.
type session struct {
	runtime    *Runtime
	terminal   *Terminal
	controller *controller.RecipeController
}

func openSession(ctx context.Context, cmd *cobra.Command, opts *options, load Loader) (*session, error) {
	if err := validateProfile(opts.Profile); err != nil {
		return nil, err
	}
	rt, err := load(ctx)
	if err != nil {
		return nil, err
	}
	term := NewTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.WordWrap, opts.Plain)
	ctrl, err := controller.New(ctx, controller.Deps{
		Generator: rt.Generator,
		Extractor: rt.Extractor,
		Store:     store.Namespaced(rt.Store, opts.Profile),
		Surface:   term,
		Log:       rt.Log.WithField("profile", opts.Profile),
		Provider:  rt.Provider,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return &session{runtime: rt, terminal: term, controller: ctrl}, nil
}

func (s *session) Close() error {
	return s.runtime.Close()
}

func validateProfile(profile string) error {
	profile = strings.TrimSpace(profile)
	switch {
	case profile == "":
		return errProfileEmpty
	case len(profile) > MaxProfileLength:
		return errProfileTooLong
	}
	return nil
}

func parseRecipeID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errInvalidRecipeID
	}
	return id, nil
}
