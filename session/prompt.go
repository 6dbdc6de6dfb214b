package session

import (
	"fmt"
	"strings"

	"mealplan/config"
)

// InitialPrompt is the generated first user turn of a new conversation
func InitialPrompt(kitchen config.KitchenConfig) string {
	return strings.Join([]string{
		"Put together a small meal plan that is cheap, nutrient-rich and calorie dense.",
		"Each meal should combine a few whole foods and need little prep work.",
		"No meat. Spread the ingredients across categories instead of doubling up.",
		"Give me a grocery list that lasts roughly one to two weeks and three meal ideas.",
		"Every perishable should get used up before it goes bad.",
		"Lean on what is already in my pantry.",
		fmt.Sprintf("Cooking equipment: %s.", listOrNone(kitchen.Equipment)),
		fmt.Sprintf("Ingredients in pantry: %s.", listOrNone(kitchen.Pantry)),
	}, "\n")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none listed"
	}
	return strings.Join(items, ", ")
}
