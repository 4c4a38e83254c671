package stub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_UsesPromptIngredients(t *testing.T) {
	// Arrange
	g := NewGenerator()
	prompt := "Create one recipe that uses:\n- tomatoes\n- basil\n\nServings: 2\n"

	// Act
	out, err := g.Generate(context.Background(), prompt)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ModelName, out.Model)
	assert.Contains(t, out.Content, "# Tomatoes Skillet")
	assert.Contains(t, out.Content, "- basil")
	assert.Contains(t, out.Content, "## Steps")
}

func TestGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator().Generate(ctx, "- eggs")

	assert.ErrorIs(t, err, context.Canceled)
}
