// Package stub provides an offline recipe generator for development and tests
package stub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/basketful/storefront/internal/ports/outbound"
)

const ModelName = "stub-v1"

// Generator builds a simple recipe from the ingredient bullets in a prompt
type Generator struct{}

// NewGenerator creates a stub generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Provider names the backend
func (g *Generator) Provider() string {
	return "stub"
}

// Generate never fails unless ctx is done
func (g *Generator) Generate(ctx context.Context, prompt string) (*outbound.GeneratedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	ingredients := bullets(prompt)
	title := "Pantry Skillet"
	if len(ingredients) > 0 {
		title = strings.ToUpper(ingredients[0][:1]) + ingredients[0][1:] + " Skillet"
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n## Ingredients\n", title)
	for _, ing := range ingredients {
		fmt.Fprintf(&out, "- %s\n", ing)
	}
	out.WriteString("- Salt and pepper\n- 1 tbsp oil\n\n## Steps\n")
	out.WriteString("1. Prepare and chop all ingredients.\n")
	out.WriteString("2. Heat the oil in a large pan over medium heat.\n")
	out.WriteString("3. Cook the ingredients until tender, stirring often.\n")
	out.WriteString("4. Season to taste and serve warm.\n\n## Tips\n")
	out.WriteString("- Add fresh herbs at the end for brightness.\n")

	content := out.String()
	return &outbound.GeneratedText{
		Content: content,
		Model:   ModelName,
		Usage:   outbound.TokenUsage{CompletionTokens: len(strings.Fields(content))},
		Latency: time.Since(start),
	}, nil
}

func bullets(prompt string) []string {
	var out []string
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
