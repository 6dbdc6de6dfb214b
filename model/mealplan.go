package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// MealsPerPlan is the exact number of meals a plan must contain
const MealsPerPlan = 3

// Meal is one meal idea in a plan
type Meal struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps" jsonschema:"description=Preparation instructions"`
}

// MealPlan is the structured final answer of a planning turn
type MealPlan struct {
	GroceryList []string `json:"grocery_list"`
	Meals       []Meal   `json:"meals" jsonschema:"minItems=3,maxItems=3"`
}

// MealPlanSchema returns the JSON schema sent to the model as the response format
func MealPlanSchema() (json.RawMessage, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: false,
	}
	schema := reflector.Reflect(&MealPlan{})
	schema.Version = ""

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meal plan schema: %w", err)
	}
	return data, nil
}

// ParseMealPlan decodes and validates a serialized meal plan
func ParseMealPlan(content string) (*MealPlan, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var plan MealPlan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("invalid meal plan json: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ValidateMealPlan is the validator the session loop applies to the final answer
func ValidateMealPlan(content string) error {
	_, err := ParseMealPlan(content)
	return err
}

// Validate checks the constraints the schema declares
func (p *MealPlan) Validate() error {
	if p.GroceryList == nil {
		return fmt.Errorf("grocery_list is required")
	}
	if len(p.Meals) != MealsPerPlan {
		return fmt.Errorf("expected %d meals, got %d", MealsPerPlan, len(p.Meals))
	}
	for i, meal := range p.Meals {
		if strings.TrimSpace(meal.Name) == "" {
			return fmt.Errorf("meal %d has no name", i+1)
		}
		if meal.Ingredients == nil || meal.Steps == nil {
			return fmt.Errorf("meal %q is missing ingredients or steps", meal.Name)
		}
	}
	return nil
}

// Markdown renders the plan as a markdown document
func (p *MealPlan) Markdown() string {
	var b bytes.Buffer

	b.WriteString("# Grocery list\n\n")
	for _, grocery := range p.GroceryList {
		fmt.Fprintf(&b, "- %s\n", grocery)
	}

	b.WriteString("\n# Meals\n")
	for _, meal := range p.Meals {
		fmt.Fprintf(&b, "\n## %s\n\n### Ingredients\n\n", meal.Name)
		for _, ingredient := range meal.Ingredients {
			fmt.Fprintf(&b, "- %s\n", ingredient)
		}
		b.WriteString("\n### Steps\n\n")
		for j, step := range meal.Steps {
			fmt.Fprintf(&b, "%d. %s\n", j+1, step)
		}
	}

	return b.String()
}
