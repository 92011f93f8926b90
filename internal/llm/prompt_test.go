package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The prompt wording is a versioned contract with the sanitizer; these
// assertions pin the parts the rest of the pipeline relies on.
func TestBuildExtractionPrompt_Contract(t *testing.T) {
	p := BuildExtractionPrompt()

	assert.Contains(t, p, "ONLY valid JSON")
	assert.Contains(t, p, `"vendor"`)
	assert.Contains(t, p, `"lineItems"`)
	assert.Contains(t, p, "no markdown, no commentary")
	assert.Contains(t, p, "use null or empty array")
	assert.Contains(t, p, `"YYYY-MM-DD"`)
}

func TestBuildExtractionPrompt_Pure(t *testing.T) {
	assert.Equal(t, BuildExtractionPrompt(), BuildExtractionPrompt())
}
