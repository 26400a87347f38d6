package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidmoxey/relay"
	"github.com/davidmoxey/relay/markdown"
)

// stripANSI removes escape sequences so assertions hold under any
// terminal color profile.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func render(source string, width int) string {
	return stripANSI(markdown.Render(source, width, relay.DefaultTheme()))
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, markdown.Render("", 80, relay.DefaultTheme()))
}

func TestRender_ParagraphWraps(t *testing.T) {
	t.Parallel()

	got := render("one two three four five", 10)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 10)
	}
	assert.Equal(t, "one two three four five", strings.ReplaceAll(got, "\n", " "))
}

func TestRender_Heading(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "## Usage", render("## Usage", 80))
}

func TestRender_UnorderedList(t *testing.T) {
	t.Parallel()

	got := render("- first\n- second", 80)
	assert.Equal(t, "- first\n- second", got)
}

func TestRender_OrderedList(t *testing.T) {
	t.Parallel()

	got := render("1. first\n2. second", 80)
	assert.Equal(t, "1. first\n2. second", got)
}

func TestRender_CodeBlockIsNotReflowed(t *testing.T) {
	t.Parallel()

	source := "```\nfunc main() { fmt.Println(\"a very long line that would wrap\") }\n```"
	got := render(source, 10)
	assert.Contains(t, got, "func main() { fmt.Println(\"a very long line that would wrap\") }")
}

func TestRender_Blockquote(t *testing.T) {
	t.Parallel()

	got := render("> quoted", 80)
	assert.Equal(t, "> quoted", got)
}

func TestRender_ParagraphsSeparatedByBlankLine(t *testing.T) {
	t.Parallel()

	got := render("first\n\nsecond", 80)
	assert.Equal(t, "first\n\nsecond", got)
}

func TestRender_InlineStylesPreserveText(t *testing.T) {
	t.Parallel()

	got := render("use **bold** and *italic* and `code`", 80)
	assert.Equal(t, "use bold and italic and code", got)
}
