package controller

import "github.com/pageza/recipe-assistant/backend/internal/model"

// Surface is where the controller presents state. Implementations must not
// call back into the controller.
type Surface interface {
	SetBusy(busy bool)
	ShowError(message string)
	HideError()
	RenderResults(recipes []model.Recipe)
	RenderSaved(recipes []model.Recipe)
	UpdateSavedCount(n int)
	// MarkSaved switches the card control for id to its saved state.
	MarkSaved(id int)
	OpenSavedPanel()
	CloseSavedPanel()
	// Print hands a standalone printable document to the user.
	Print(recipe model.Recipe, document string)
}
