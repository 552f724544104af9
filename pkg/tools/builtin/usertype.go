package builtin

import (
	"context"

	"github.com/angilabs/angi/pkg/intent"
	"github.com/angilabs/angi/pkg/tools"
)

func detectUserTypeHandler() tools.Handler {
	def := tools.Definition{
		Name:        "detect_user_type",
		Description: "Determine whether the food request is intended for an individual or a family context.",
		Parameters: objectSchema(map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The user's original message asking for food recommendations.",
			},
		}, "message"),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		userType, err := intent.DetectUserType(ctx, tc.Model, tools.StringArg(args, "message"))
		if err != nil {
			return nil, err
		}
		return string(userType), nil
	})
}

func extractIngredientsHandler() tools.Handler {
	def := tools.Definition{
		Name:        "extract_ingredients",
		Description: "Extract the food ingredients mentioned in the user's message.",
		Parameters: objectSchema(map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The user's message listing what they have at home.",
			},
		}, "message"),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		return intent.DetectIngredients(ctx, tc.Model, tools.StringArg(args, "message"))
	})
}
