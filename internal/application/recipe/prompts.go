package recipe

import (
	"fmt"
	"strings"

	"github.com/basketful/storefront/internal/domain/recipegen"
)

// buildGenerationPrompt creates the prompt for a recipe from on-hand ingredients
func buildGenerationPrompt(req recipegen.Request) string {
	var prompt strings.Builder

	prompt.WriteString("You are a home cooking assistant. Create one recipe that uses the following ingredients:\n")
	for _, ing := range req.Ingredients {
		prompt.WriteString(fmt.Sprintf("- %s\n", ing))
	}

	prompt.WriteString(fmt.Sprintf("\nServings: %d\n", req.Servings))
	if req.Cuisine != "" {
		prompt.WriteString(fmt.Sprintf("Cuisine: %s\n", req.Cuisine))
	}
	if len(req.Dietary) > 0 {
		prompt.WriteString(fmt.Sprintf("Dietary requirements: %s\n", strings.Join(req.Dietary, ", ")))
	}
	if req.Preferences != "" {
		prompt.WriteString(fmt.Sprintf("Preferences: %s\n", req.Preferences))
	}

	prompt.WriteString("\nYou may assume basic pantry staples (salt, pepper, oil, water).\n")
	prompt.WriteString("Respond in Markdown with these sections:\n")
	prompt.WriteString("# <Recipe title>\n")
	prompt.WriteString("## Ingredients (bulleted, with quantities)\n")
	prompt.WriteString("## Steps (numbered)\n")
	prompt.WriteString("## Tips\n")

	return prompt.String()
}
