package service

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/store"
)

// SavedRecipesKey is the store key holding the serialized saved list.
const SavedRecipesKey = "savedRecipes"

// SavedRecipeList is the user's saved recipes in insertion order. No two
// entries share an id. Every mutation rewrites the whole list to the store.
// It is not safe for concurrent use; the owning controller serializes access.
type SavedRecipeList struct {
	store   store.KVStore
	recipes []model.Recipe
	log     logrus.FieldLogger
}

// LoadSavedRecipes reads the list from kv. A missing or malformed value yields
// an empty list; only store failures are returned.
func LoadSavedRecipes(ctx context.Context, kv store.KVStore, log logrus.FieldLogger) (*SavedRecipeList, error) {
	list := &SavedRecipeList{store: kv, log: log, recipes: []model.Recipe{}}

	raw, found, err := kv.Get(ctx, SavedRecipesKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load saved recipes")
	}
	if !found || raw == "" {
		return list, nil
	}

	var recipes []model.Recipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		log.WithError(err).Warn("discarding malformed saved recipes")
		return list, nil
	}
	if recipes != nil {
		list.recipes = recipes
	}
	return list, nil
}

// All returns a copy of the saved recipes.
func (l *SavedRecipeList) All() []model.Recipe {
	out := make([]model.Recipe, len(l.recipes))
	copy(out, l.recipes)
	return out
}

// Len returns the number of saved recipes.
func (l *SavedRecipeList) Len() int {
	return len(l.recipes)
}

// Contains reports whether a recipe with id is saved.
func (l *SavedRecipeList) Contains(id int) bool {
	_, ok := model.FindRecipe(l.recipes, id)
	return ok
}

// Add appends r unless its id is already saved. It reports whether the list
// changed. The list is left untouched when the write fails.
func (l *SavedRecipeList) Add(ctx context.Context, r model.Recipe) (bool, error) {
	if l.Contains(r.ID) {
		return false, nil
	}
	next := make([]model.Recipe, len(l.recipes), len(l.recipes)+1)
	copy(next, l.recipes)
	next = append(next, r)
	if err := l.persist(ctx, next); err != nil {
		return false, err
	}
	l.recipes = next
	return true, nil
}

// Remove drops every entry with id and persists the result even when nothing
// matched. The list is left untouched when the write fails.
func (l *SavedRecipeList) Remove(ctx context.Context, id int) (bool, error) {
	kept := make([]model.Recipe, 0, len(l.recipes))
	for _, r := range l.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if err := l.persist(ctx, kept); err != nil {
		return false, err
	}
	removed := len(kept) != len(l.recipes)
	l.recipes = kept
	return removed, nil
}

func (l *SavedRecipeList) persist(ctx context.Context, recipes []model.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return pkgerrors.Wrap(err, "encode saved recipes")
	}
	return pkgerrors.Wrap(l.store.Set(ctx, SavedRecipesKey, string(data)), "persist saved recipes")
}
