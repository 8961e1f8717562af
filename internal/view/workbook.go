package view

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pageza/recipe-assistant/backend/internal/model"
)

const savedSheet = "Saved Recipes"

var workbookHeader = []interface{}{
	"id", "title", "description", "cook_time", "difficulty", "calories", "ingredients", "instructions",
}

// SavedWorkbook builds a spreadsheet with one row per saved recipe. Ingredient
// and instruction lists are joined one item per line.
func SavedWorkbook(recipes []model.Recipe) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", savedSheet); err != nil {
		f.Close()
		return nil, err
	}

	sw, err := f.NewStreamWriter(savedSheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := sw.SetRow("A1", workbookHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, r := range recipes {
		row := []interface{}{
			r.ID, r.Title, r.Description, string(r.CookTime), string(r.Difficulty), string(r.Calories),
			strings.Join(r.Ingredients, "\n"),
			strings.Join(r.Instructions, "\n"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteSavedWorkbook streams the saved list workbook to w.
func WriteSavedWorkbook(w io.Writer, recipes []model.Recipe) error {
	f, err := SavedWorkbook(recipes)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}
