package service

import (
	"fmt"
	"strings"
)

// Submission is one press of the submit control. File takes precedence over
// Ingredients when both are present.
type Submission struct {
	Ingredients string  `json:"ingredients"`
	Tone        string  `json:"tone"`
	File        *Upload `json:"-"`
}

// Validate rejects a submission with neither ingredients nor a file.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Ingredients) == "" && s.File == nil {
		return &ValidationError{Message: "Please enter ingredients or upload a PDF file"}
	}
	return nil
}

// IngredientsPrompt builds the prompt for a typed ingredient list.
func IngredientsPrompt(ingredients, tone string) string {
	return fmt.Sprintf("Create 3 recipe suggestions using these ingredients: %s. Tone: %s.", strings.TrimSpace(ingredients), tone)
}

// DocumentPrompt builds the prompt for text extracted from an upload.
func DocumentPrompt(text string) string {
	return "Summarize and create recipes from this PDF content: " + text
}
