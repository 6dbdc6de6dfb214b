package testutil

import (
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealplan/model"
)

// ValidMealPlanJSON is a final answer that passes model.ValidateMealPlan
const ValidMealPlanJSON = `{"grocery_list":["rice","eggs","spinach"],"meals":[` +
	`{"name":"Fried rice","ingredients":["rice","eggs"],"steps":["cook rice","fry with eggs"]},` +
	`{"name":"Spinach omelette","ingredients":["eggs","spinach"],"steps":["whisk","fold in spinach"]},` +
	`{"name":"Rice bowl","ingredients":["rice","spinach"],"steps":["steam","top"]}]}`

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		model.UserMessage("Plan three dinners. I have rice and eggs."),
		model.ToolMessage("get_meal_notes", `[{"note":"loved the curry"}]`),
		model.AssistantMessage(ValidMealPlanJSON),
		model.UserMessage("Something without eggs please"),
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{model.UserMessage(content)}
}

// TestMCPTools returns sample tool specs for testing
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		mcptypes.NewTool("get_meal_notes",
			mcptypes.WithDescription("Sample feedback notes from past meal plans"),
			mcptypes.WithNumber("n", mcptypes.Description("How many notes to sample")),
		),
		mcptypes.NewTool("get_food_details",
			mcptypes.WithDescription("Look up nutrition details for a food"),
			mcptypes.WithString("food", mcptypes.Required(), mcptypes.Description("Food name")),
		),
	}
}

// EmptyMessages returns an empty message slice for edge case testing
func EmptyMessages() []model.Message {
	return []model.Message{}
}

// SystemMessage returns a system message for testing
func SystemMessage(content string) model.Message {
	return model.Message{Role: model.RoleSystem, Content: content}
}
