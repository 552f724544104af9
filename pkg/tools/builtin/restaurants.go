package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/angilabs/angi/pkg/tools"
)

func findRestaurantsHandler() tools.Handler {
	def := tools.Definition{
		Name:        "find_restaurants",
		Description: "Find restaurants based on cuisine and location.",
		Parameters: objectSchema(map[string]any{
			"location": map[string]any{"type": "string"},
			"cuisine":  map[string]any{"type": "string"},
		}),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		location := tools.StringArg(args, "location")
		cuisine := tools.StringArg(args, "cuisine")

		// The model sometimes calls this without a location; fall back to
		// the city resolved from the caller's IP.
		if location == "" || strings.EqualFold(location, "none") {
			if tc.Weather != nil {
				if report, err := tc.Weather.CurrentByIP(ctx); err == nil {
					location = report.City
				} else {
					tc.Log().Warn("location fallback failed", "error", err)
				}
			}
		}

		prompt := fmt.Sprintf("Gợi ý nhà hàng %s tại %s (Vietnamese).", cuisine, location)
		return tc.Ask(ctx, prompt)
	})
}
