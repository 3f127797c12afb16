package chartifact

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// htmlViewTemplate wraps the sanitized fragment in a complete HTML5
// document: generated chroma stylesheet first, body second.
const htmlViewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>chartifact document</title>
<style>
%s</style>
</head>
<body>
%s
</body>
</html>`

// chromaStyleName is the highlight palette for the static view.
const chromaStyleName = "github"

// HTMLView renders a chartifact document to a standalone, syntax-
// highlighted HTML page for inspection without the renderer runtime.
// Chart spec and data blocks come out as highlighted fenced code; this
// view never interprets them.
type HTMLView struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLView creates an HTMLView with GFM extensions, class-based syntax
// highlighting, and a UGC sanitization policy over the rendered fragment.
func NewHTMLView() *HTMLView {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(chromaStyleName),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // external stylesheet control
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// WithUnsafe() intentionally not used: the source document is
			// untrusted report text.
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)).OnElements("span", "code", "pre", "div")
	policy.AllowAttrs("id").Matching(regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)).OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &HTMLView{md: md, policy: policy}
}

// Render converts chartifact markdown to a sanitized standalone HTML page.
// Context cancellation is supported via the goroutine + select pattern
// since goldmark has no native context support.
func (v *HTMLView) Render(ctx context.Context, doc string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		page string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := v.md.Convert([]byte(doc), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLViewRender, err)}
			return
		}

		stylesheet, err := chromaStylesheet()
		if err != nil {
			done <- result{err: err}
			return
		}

		body := v.policy.Sanitize(buf.String())
		done <- result{page: fmt.Sprintf(htmlViewTemplate, stylesheet, body)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.page, r.err
	}
}

// chromaStylesheet emits the CSS backing the class-based highlight spans.
func chromaStylesheet() (string, error) {
	style := styles.Get(chromaStyleName)
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("%w: stylesheet: %v", ErrHTMLViewRender, err)
	}
	return buf.String(), nil
}
