package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealplan/config"
	"mealplan/storage"
)

const (
	MealNotesTool      = "get_meal_notes"
	RecentRequestsTool = "get_recent_requests"
	FoodDetailsTool    = "get_food_details"

	defaultMealNotes = 3
)

// History is the part of the transcript store the built-in tools read from
type History interface {
	SampleAnnotations(ctx context.Context, n int) ([]storage.Annotation, error)
	UserFollowUps(ctx context.Context, id int64) ([]string, error)
}

// NewBuiltinRegistry registers the meal planner's tools with the limits from cfg
func NewBuiltinRegistry(history History, cfg config.ToolsConfig) (*Registry, error) {
	var throttle *Throttle
	if cfg.CallsPerMinute > 0 {
		throttle = NewThrottle(cfg.CallsPerMinute)
	}
	guard := func(constraints ...Constraint) []Constraint {
		if throttle != nil {
			constraints = append(constraints, throttle)
		}
		return constraints
	}

	reg := NewRegistry()

	mealNotes := NewTool(
		mcptypes.NewTool(MealNotesTool,
			mcptypes.WithDescription("Get a random sample of notes, likes and dislikes left on past meal plans"),
			mcptypes.WithNumber("n",
				mcptypes.Description("The max number of meal plan notes to return"),
			),
		),
		mealNotesFunc(history),
		guard(NewCallLimit(cfg.MealNotesLimit))...,
	)
	if err := reg.Register(mealNotes); err != nil {
		return nil, err
	}

	recent := NewTool(
		mcptypes.NewTool(RecentRequestsTool,
			mcptypes.WithDescription("Get the follow-up requests the user made in their most recent meal planning session"),
		),
		recentRequestsFunc(history),
		guard(NewCallLimit(cfg.RecentRequestsLimit))...,
	)
	if err := reg.Register(recent); err != nil {
		return nil, err
	}

	if cfg.FoodLookup {
		food := NewTool(
			mcptypes.NewTool(FoodDetailsTool,
				mcptypes.WithDescription("Look up nutrition details for a food item"),
				mcptypes.WithString("food",
					mcptypes.Required(),
					mcptypes.Description("Name of the food item"),
				),
			),
			foodDetails,
			guard(NewUniqueArgs())...,
		)
		if err := reg.Register(food); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func mealNotesFunc(history History) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		n, err := intArg(args, "n", defaultMealNotes)
		if err != nil {
			return nil, err
		}
		notes, err := history.SampleAnnotations(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("failed to sample meal notes: %w", err)
		}
		if notes == nil {
			notes = []storage.Annotation{}
		}
		return notes, nil
	}
}

func recentRequestsFunc(history History) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		requests, err := history.UserFollowUps(ctx, storage.Latest)
		if errors.Is(err, storage.ErrNotFound) {
			return []string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load recent requests: %w", err)
		}
		if requests == nil {
			requests = []string{}
		}
		return requests, nil
	}
}

func foodDetails(ctx context.Context, args map[string]any) (any, error) {
	food, _ := args["food"].(string)
	return nil, fmt.Errorf("food lookup for %q: %w", food, ErrNotImplemented)
}

// intArg reads an integer argument. Models send numbers as JSON numbers or
// occasionally as strings.
func intArg(args map[string]any, name string, def int) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %s: %w", name, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %s: expected a number, got %q", name, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %s: expected a number, got %T", name, v)
	}
}
