// Package intent holds small one-shot classifiers that turn free-form user
// text into structured hints for the recommendation handlers.
package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/angilabs/angi/pkg/model"
)

// UserType distinguishes a request for one person from a request for a
// household.
type UserType string

const (
	UserTypePersonal UserType = "personal"
	UserTypeFamily   UserType = "family"
)

// DetectUserType asks the model to classify who the food request is for.
// Output is normalized: anything that is not clearly a family request is
// treated as personal.
func DetectUserType(ctx context.Context, m model.Model, message string) (UserType, error) {
	if m == nil {
		return "", fmt.Errorf("detect user type: no model configured")
	}
	prompt := fmt.Sprintf(
		"Analyze the following message and respond with only one word: "+
			"'personal' if the request is for an individual, or 'family' if it's for a group or household.\n\n"+
			"Message: %s\n\nAnswer:", message)

	resp, err := m.Complete(ctx, []model.Message{
		{Role: model.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("detect user type: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(resp.Content))
	if strings.Contains(answer, "family") {
		return UserTypeFamily, nil
	}
	return UserTypePersonal, nil
}

// DetectIngredients extracts a comma-separated ingredient list from the
// user's message, in Vietnamese.
func DetectIngredients(ctx context.Context, m model.Model, message string) (string, error) {
	if m == nil {
		return "", fmt.Errorf("detect ingredients: no model configured")
	}
	system := "You are an assistant that extracts food ingredients from text. " +
		"Return only a comma-separated list of ingredient names, no extra words. " +
		"Use singular, common names (e.g., 'tomato', 'olive oil')."
	prompt := fmt.Sprintf(
		"You are a Vietnamese food ingredient extraction assistant.\n"+
			"Given a user's message, extract and return only the list of valid ingredient names in Vietnamese, "+
			"separated by ', '. Do not include explanations, titles, or extra words. "+
			"Example output: 'gà, tỏi, ớt'.\n\n"+
			"User messages: %s\n\n"+
			"Return only the ingredient names, separated by commas.", message)

	resp, err := m.Complete(ctx, []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("detect ingredients: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// MealTimeFromHour maps an hour of day (0-23) to the Vietnamese meal-time
// label used in recommendation prompts.
func MealTimeFromHour(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return "sáng"
	case hour >= 11 && hour < 14:
		return "trưa"
	case hour >= 14 && hour < 17:
		return "chiều"
	case hour >= 17 && hour < 22:
		return "tối"
	default:
		return "đêm"
	}
}
