package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_Heading(t *testing.T) {
	out := renderMarkdown("# Welcome\n\nPlease read this.")
	assert.Contains(t, out, "WELCOME")
	assert.Contains(t, out, "Please read this.")
}

func TestRenderMarkdown_ListItems(t *testing.T) {
	out := renderMarkdown("Steps:\n\n- sit down\n- breathe\n")
	assert.Contains(t, out, "  - sit down")
	assert.Contains(t, out, "  - breathe")
}

func TestRenderMarkdown_StripsInlineFormatting(t *testing.T) {
	out := renderMarkdown("This is **important** and _subtle_.")
	assert.Contains(t, out, "important")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "_subtle_")
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	out := renderMarkdown("just a sentence")
	assert.Equal(t, "just a sentence", strings.TrimSpace(out))
}
