// Package builtin carries the compiled-in tool handlers: weather lookup,
// restaurant search, the food-recommendation family, cooking instructions,
// and serving-type detection. Most of them format a prompt from the call
// arguments and issue a one-shot model call through the dispatch context.
package builtin

import (
	"github.com/angilabs/angi/pkg/tools"
)

// Source returns the builtin handler source. It is registered after the
// manifest directory, so a manifest can override any builtin by name.
func Source() tools.Source {
	return tools.NewStaticSource("builtin",
		weatherHandler(),
		findRestaurantsHandler(),
		recommendFoodHandler(),
		foodRecommendationHandler(),
		recommendFoodDetailHandler(),
		howToCookHandler(),
		detectUserTypeHandler(),
		extractIngredientsHandler(),
	)
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
