package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/davidmoxey/relay"
)

// span is a run of inline text with one style applied. Wrapping works
// on plain text widths; styles are applied per word at emit time so
// ANSI escapes never confuse the width math.
type span struct {
	text  string
	style lipgloss.Style
}

type renderer struct {
	md      goldmark.Markdown
	plain   lipgloss.Style
	heading lipgloss.Style
	bold    lipgloss.Style
	italic  lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
}

func newRenderer(theme relay.Theme) renderer {
	return renderer{
		md:      goldmark.New(),
		plain:   lipgloss.NewStyle(),
		heading: lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		bold:    lipgloss.NewStyle().Bold(true),
		italic:  lipgloss.NewStyle().Italic(true),
		code:    lipgloss.NewStyle().Foreground(ansiColor(theme.ToolCall)),
		link:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(fmt.Sprintf("%d", index))
}

func (r renderer) render(src []byte, width int) string {
	doc := r.md.Parser().Parse(gtext.NewReader(src))
	var blocks []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.renderBlock(c, src, width); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (r renderer) renderBlock(n ast.Node, src []byte, width int) string {
	switch n := n.(type) {
	case *ast.Heading:
		spans := r.inline(n, src, r.heading)
		marker := span{text: strings.Repeat("#", n.Level), style: r.heading}
		return wrap(append([]span{marker}, spans...), width)
	case *ast.Paragraph, *ast.TextBlock:
		return wrap(r.inline(n, src, r.plain), width)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return r.renderCode(n, src)
	case *ast.List:
		return r.renderList(n, src, width)
	case *ast.Blockquote:
		var inner []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if s := r.renderBlock(c, src, width-2); s != "" {
				inner = append(inner, s)
			}
		}
		return prefixLines(strings.Join(inner, "\n\n"), "> ")
	case *ast.ThematicBreak:
		w := width
		if w <= 0 || w > 40 {
			w = 40
		}
		return strings.Repeat("─", w)
	default:
		return wrap(r.inline(n, src, r.plain), width)
	}
}

func (r renderer) renderCode(n ast.Node, src []byte) string {
	lines := n.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if i > 0 {
			b.WriteString("\n")
		}
		line := strings.TrimRight(string(seg.Value(src)), "\n")
		b.WriteString("  " + r.code.Render(line))
	}
	return b.String()
}

func (r renderer) renderList(n *ast.List, src []byte, width int) string {
	var items []string
	index := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		var inner []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if s := r.renderBlock(c, src, width-len(marker)); s != "" {
				inner = append(inner, s)
			}
		}
		body := strings.Join(inner, "\n")
		indented := prefixLines(body, strings.Repeat(" ", len(marker)))
		items = append(items, marker+strings.TrimPrefix(indented, strings.Repeat(" ", len(marker))))
	}
	return strings.Join(items, "\n")
}

// inline flattens a block's inline children into styled spans.
func (r renderer) inline(n ast.Node, src []byte, style lipgloss.Style) []span {
	var spans []span
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			spans = append(spans, span{text: string(c.Segment.Value(src)), style: style})
			if c.SoftLineBreak() || c.HardLineBreak() {
				spans = append(spans, span{text: " ", style: style})
			}
		case *ast.String:
			spans = append(spans, span{text: string(c.Value), style: style})
		case *ast.Emphasis:
			st := r.italic
			if c.Level >= 2 {
				st = r.bold
			}
			spans = append(spans, r.inline(c, src, st)...)
		case *ast.CodeSpan:
			spans = append(spans, r.inline(c, src, r.code)...)
		case *ast.Link:
			spans = append(spans, r.inline(c, src, r.link)...)
			spans = append(spans, span{text: "(" + string(c.Destination) + ")", style: r.plain})
		case *ast.AutoLink:
			spans = append(spans, span{text: string(c.URL(src)), style: r.link})
		default:
			spans = append(spans, r.inline(c, src, style)...)
		}
	}
	return spans
}

// wrap greedily fills lines up to width using display widths, then
// applies each word's style.
func wrap(spans []span, width int) string {
	var words []span
	for _, s := range spans {
		for _, w := range strings.Fields(s.text) {
			words = append(words, span{text: w, style: s.style})
		}
	}
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineWidth := 0
	for i, w := range words {
		wWidth := runewidth.StringWidth(w.text)
		switch {
		case i == 0:
		case width > 0 && lineWidth+1+wWidth > width:
			b.WriteString("\n")
			lineWidth = 0
		default:
			b.WriteString(" ")
			lineWidth++
		}
		b.WriteString(w.style.Render(w.text))
		lineWidth += wWidth
	}
	return b.String()
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
