package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/angilabs/angi/pkg/intent"
	"github.com/angilabs/angi/pkg/tools"
)

func recommendFoodHandler() tools.Handler {
	def := tools.Definition{
		Name:        "recommend_food",
		Description: "Recommend food based on gender, location, disease, or time",
		Parameters: objectSchema(map[string]any{
			"gender":   map[string]any{"type": "string"},
			"location": map[string]any{"type": "string"},
			"disease":  map[string]any{"type": "string"},
			"time":     map[string]any{"type": "string"},
		}),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		mealTime := tools.StringArg(args, "time")
		if mealTime == "" {
			mealTime = intent.MealTimeFromHour(time.Now().Hour())
		}
		prompt := fmt.Sprintf("Recommend dishes for %s, %s, %s, %s (Vietnamese).",
			tools.StringArg(args, "disease"),
			tools.StringArg(args, "location"),
			mealTime,
			tools.StringArg(args, "gender"))
		return tc.Ask(ctx, prompt)
	})
}

func foodRecommendationHandler() tools.Handler {
	def := tools.Definition{
		Name:        "get_food_recommendation",
		Description: "Recommend food based on location and weather.",
		Parameters: objectSchema(map[string]any{
			"location":          map[string]any{"type": "string"},
			"weather_condition": map[string]any{"type": "string"},
		}, "location", "weather_condition"),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		prompt := fmt.Sprintf("Gợi ý món ăn ngon ở %s dựa trên cảm giác khi trời %s độ C.",
			tools.StringArg(args, "location"),
			tools.StringArg(args, "weather_condition"))
		return tc.Ask(ctx, prompt)
	})
}

func recommendFoodDetailHandler() tools.Handler {
	def := tools.Definition{
		Name:        "recommend_food_detail",
		Description: "Recommend detailed food style and taste.",
		Parameters: objectSchema(map[string]any{
			"style": map[string]any{"type": "string"},
			"taste": map[string]any{"type": "string"},
		}),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		prompt := fmt.Sprintf("Gợi ý món ăn %s với hương vị %s (Vietnamese).",
			tools.StringArg(args, "style"),
			tools.StringArg(args, "taste"))
		return tc.Ask(ctx, prompt)
	})
}

func howToCookHandler() tools.Handler {
	def := tools.Definition{
		Name:        "how_to_cook_food",
		Description: "Explain how to cook a specific food",
		Parameters: objectSchema(map[string]any{
			"food_name": map[string]any{"type": "string"},
			"location":  map[string]any{"type": "string"},
		}, "food_name"),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		prompt := fmt.Sprintf("Briefly explain how %s is prepared in %s (Vietnamese, at most 5 lines).",
			tools.StringArg(args, "food_name"),
			tools.StringArg(args, "location"))
		return tc.Ask(ctx, prompt)
	})
}
