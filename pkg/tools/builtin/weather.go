package builtin

import (
	"context"
	"fmt"

	"github.com/angilabs/angi/pkg/tools"
)

const weatherUnavailableMsg = "Hiện tại không thể lấy thông tin thời tiết, vui lòng thử lại sau."

func weatherHandler() tools.Handler {
	def := tools.Definition{
		Name:        "get_current_weather",
		Description: "Get the user's current city and temperature using free APIs.",
		Parameters:  objectSchema(map[string]any{}),
	}
	return tools.NewHandler(def, func(ctx context.Context, tc *tools.Context, args map[string]any) (any, error) {
		_ = args // no arguments required
		if tc.Weather == nil {
			return weatherUnavailableMsg, nil
		}
		report, err := tc.Weather.CurrentByIP(ctx)
		if err != nil {
			tc.Log().Warn("weather lookup failed", "error", err)
			return weatherUnavailableMsg, nil
		}
		if report.City == "" {
			return "Thông tin thời tiết không đầy đủ, vui lòng thử lại sau.", nil
		}
		return fmt.Sprintf("Thời tiết ở %s hôm nay là %g°C.", report.City, report.Temperature), nil
	})
}
