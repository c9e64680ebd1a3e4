package nbforge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/adrg/frontmatter"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrPreviewRender indicates markdown rendering failed.
var ErrPreviewRender = errors.New("preview rendering failed")

// previewTemplate wraps the rendered fragment in a complete HTML5
// document so a converted post can be opened directly in a browser.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.6; }
img { max-width: 100%%; }
pre { padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
%s
</body>
</html>`

// Previewer renders a converted markdown post to standalone HTML,
// without a full site build.
type Previewer struct {
	md goldmark.Markdown
}

// NewPreviewer creates a Previewer with GFM extensions and syntax
// highlighting in a chroma style matching the conversion theme.
func NewPreviewer(theme string) *Previewer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(chromaStyle(theme)),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles keep the page self-contained
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)
	return &Previewer{md: md}
}

// Render strips the post's frontmatter and converts the body to a
// standalone HTML document. Supports context cancellation via
// goroutine + select since goldmark doesn't take a context.
func (p *Previewer) Render(ctx context.Context, src []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var meta postMeta
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		// No usable frontmatter: render the whole input.
		body = src
	}
	title := meta.Title
	if title == "" {
		title = "Preview"
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := p.md.Convert(body, &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrPreviewRender, err)}
			return
		}
		done <- result{html: fmt.Sprintf(previewTemplate, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// chromaStyle maps the nbconvert theme to a chroma style name. Other
// values pass through so any chroma style can be requested directly.
func chromaStyle(theme string) string {
	switch theme {
	case "", "dark":
		return "monokai"
	case "light":
		return "github"
	default:
		return theme
	}
}
