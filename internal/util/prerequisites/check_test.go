package prerequisites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Found(t *testing.T) {
	t.Parallel()
	results := Check([]Tool{{Name: "sh", Required: true}})

	require.Len(t, results.Results, 1)
	if !results.Results[0].Found {
		t.Skip("sh not in PATH")
	}
	assert.NotEmpty(t, results.Results[0].Path)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheck_MissingRequired(t *testing.T) {
	t.Parallel()
	results := Check([]Tool{{Name: "nonexistent-tool-xyz123", Required: true, Description: "test tool"}})

	require.Len(t, results.Missing, 1)
	assert.True(t, results.HasErrors())
	assert.EqualError(t, results.Error(), "missing required tools: nonexistent-tool-xyz123 (test tool)")
}

func TestCheck_MissingOptional(t *testing.T) {
	t.Parallel()
	results := Check([]Tool{{Name: "nonexistent-tool-xyz123"}})

	assert.Len(t, results.Missing, 1)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestTools(t *testing.T) {
	t.Parallel()
	required := func(tools []Tool, name string) bool {
		for _, tool := range tools {
			if tool.Name == name {
				return tool.Required
			}
		}
		t.Fatalf("tool %s not listed", name)
		return false
	}

	assert.True(t, required(Tools(false), "sh"))
	assert.False(t, required(Tools(false), "ssh-keygen"))
	assert.True(t, required(Tools(true), "ssh-keygen"))
}
