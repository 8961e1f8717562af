package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValueAndScan(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"2 eggs", "1 tomato"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["2 eggs","1 tomato"]`, v)

	var list StringList
	require.NoError(t, list.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, list)

	require.NoError(t, list.Scan(nil))
	assert.Empty(t, list)
}

func TestFindRecipe(t *testing.T) {
	batch := []Recipe{{ID: 1, Title: "one"}, {ID: 2, Title: "two"}, {ID: 2, Title: "shadow"}}

	r, ok := FindRecipe(batch, 2)
	assert.True(t, ok)
	assert.Equal(t, "two", r.Title)

	_, ok = FindRecipe(batch, 9)
	assert.False(t, ok)
}

func TestRecipeDisplayFieldsAcceptNumbers(t *testing.T) {
	var batch []Recipe
	err := json.Unmarshal([]byte(`[
		{"id":1,"title":"Soup","cookTime":15,"difficulty":"Easy","calories":320},
		{"id":2,"title":"Rice","cookTime":"25 min","difficulty":null,"calories":"280.5"},
		{"id":3,"title":"Toast","calories":1.5e2}
	]`), &batch)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	assert.Equal(t, DisplayText("320"), batch[0].Calories)
	assert.Equal(t, DisplayText("15"), batch[0].CookTime)
	assert.Equal(t, DisplayText("Easy"), batch[0].Difficulty)
	assert.Equal(t, DisplayText("280.5"), batch[1].Calories)
	assert.Empty(t, batch[1].Difficulty)
	assert.Equal(t, DisplayText("1.5e2"), batch[2].Calories)
	assert.Empty(t, batch[2].CookTime)

	out, err := json.Marshal(batch[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"calories":"320"`)
}

func TestRecipeDisplayFieldsRejectStructures(t *testing.T) {
	var r Recipe
	assert.Error(t, json.Unmarshal([]byte(`{"calories":{"kcal":320}}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"cookTime":["15","min"]}`), &r))
}
