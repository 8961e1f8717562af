package service

import "github.com/pageza/recipe-assistant/backend/internal/model"

// FallbackRecipes returns the built-in batch served while no generation
// endpoint is configured. Each call returns a fresh copy.
func FallbackRecipes() []model.Recipe {
	return []model.Recipe{
		{
			ID:          1,
			Title:       "Spanish Rice with Eggs",
			Description: "A delicious and easy one-pan meal that combines fluffy rice with perfectly cooked eggs and fresh tomatoes.",
			CookTime:    "25 min",
			Difficulty:  "Easy",
			Calories:    "320",
			Ingredients: model.StringList{
				"2 cups cooked rice",
				"4 large eggs",
				"2 tomatoes, diced",
				"1 onion, chopped",
				"2 cloves garlic, minced",
				"2 tbsp olive oil",
				"Salt and pepper to taste",
				"Fresh parsley for garnish",
			},
			Instructions: model.StringList{
				"Heat olive oil in a large pan over medium heat.",
				"Add onions and garlic, cook until softened (3-4 minutes).",
				"Add diced tomatoes and cook for another 5 minutes.",
				"Stir in cooked rice and season with salt and pepper.",
				"Create 4 wells in the rice mixture and crack an egg into each well.",
				"Cover and cook for 6-8 minutes until eggs are set.",
				"Garnish with fresh parsley and serve hot.",
			},
		},
		{
			ID:          2,
			Title:       "Tomato Egg Drop Soup",
			Description: "A comforting and light soup that's perfect for a quick lunch or light dinner.",
			CookTime:    "15 min",
			Difficulty:  "Very Easy",
			Calories:    "180",
			Ingredients: model.StringList{
				"4 cups vegetable broth",
				"3 eggs, beaten",
				"2 tomatoes, chopped",
				"2 green onions, sliced",
				"1 tsp ginger, grated",
				"1 tbsp soy sauce",
				"1 tsp sesame oil",
			},
			Instructions: model.StringList{
				"Bring vegetable broth to a boil in a medium pot.",
				"Add chopped tomatoes and grated ginger, simmer for 5 minutes.",
				"Slowly drizzle in beaten eggs while stirring the soup.",
				"Add soy sauce and sesame oil.",
				"Garnish with green onions and serve immediately.",
			},
		},
		{
			ID:          3,
			Title:       "Rice Frittata with Fresh Herbs",
			Description: "A versatile frittata that turns leftover rice into a protein-packed meal.",
			CookTime:    "30 min",
			Difficulty:  "Medium",
			Calories:    "280",
			Ingredients: model.StringList{
				"6 large eggs",
				"2 cups cooked rice",
				"1 tomato, diced",
				"1/2 onion, finely chopped",
				"1/4 cup milk",
				"1/2 cup shredded cheese",
				"2 tbsp fresh herbs (parsley, chives)",
				"Salt and pepper to taste",
			},
			Instructions: model.StringList{
				"Preheat oven to 375°F (190°C).",
				"Whisk eggs with milk, salt, and pepper.",
				"Mix in cooked rice, tomatoes, onions, and herbs.",
				"Pour mixture into a greased oven-safe skillet.",
				"Sprinkle cheese on top.",
				"Bake for 20-25 minutes until set and golden.",
				"Let cool for 5 minutes before serving.",
			},
		},
	}
}
