package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Highlight placeholders use Unicode Private Use Area characters. They pass
// through Goldmark and the sanitizer unchanged and become <mark> tags last.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
	whitespaceRun      = regexp.MustCompile(`[ \t]*\n[ \t\n]*\n[ \t]*`)
)

// Fragment is a rendered Markdown document.
type Fragment struct {
	HTML string // sanitized HTML, no <html>/<body> wrapper
	Text string // tags stripped, paragraphs separated by blank lines
}

// MarkdownRenderer converts Markdown to sanitized HTML fragments.
// It is safe for concurrent use.
type MarkdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strip  *bluemonday.Policy
}

// NewMarkdownRenderer creates a renderer with GFM extensions, footnotes
// and syntax highlighting.
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
			gmhtml.WithUnsafe(), // output goes through the sanitizer
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).Globally()
	policy.AllowAttrs("id").Matching(regexp.MustCompile(`^[\w\-:]+$`)).Globally()
	policy.AllowElements("mark", "figure", "figcaption")

	return &MarkdownRenderer{
		md:     md,
		policy: policy,
		strip:  bluemonday.StrictPolicy(),
	}
}

// Render converts content to a Fragment. Relative image and link paths are
// resolved against baseDir when it is set.
// Goldmark has no context support, so conversion runs in a goroutine and
// Render returns early on cancellation.
func (r *MarkdownRenderer) Render(ctx context.Context, content, baseDir string) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}

	type result struct {
		frag Fragment
		err  error
	}
	done := make(chan result, 1)

	go func() {
		frag, err := r.render(content, baseDir)
		done <- result{frag: frag, err: err}
	}()

	select {
	case <-ctx.Done():
		return Fragment{}, ctx.Err()
	case res := <-done:
		return res.frag, res.err
	}
}

func (r *MarkdownRenderer) render(content, baseDir string) (Fragment, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(Preprocess(content)), &buf); err != nil {
		return Fragment{}, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	safe := r.policy.Sanitize(buf.String())
	rewritten, err := RewriteRelativePaths(safe, baseDir)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	return Fragment{
		HTML: strings.TrimSpace(ConvertMarkPlaceholders(rewritten)),
		Text: r.plainText(safe),
	}, nil
}

// plainText strips every tag and decodes entities.
func (r *MarkdownRenderer) plainText(fragment string) string {
	block := strings.NewReplacer("</p>", "</p>\n\n", "<br/>", "\n", "<br>", "\n", "</li>", "</li>\n", "</h1>", "</h1>\n\n", "</h2>", "</h2>\n\n", "</h3>", "</h3>\n\n")
	text := html.UnescapeString(r.strip.Sanitize(block.Replace(fragment)))
	text = strings.NewReplacer(MarkStartPlaceholder, "", MarkEndPlaceholder, "").Replace(text)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, "\n\n"))
}

// Preprocess normalizes line endings, turns ==text== into highlight
// placeholders and limits runs of blank lines.
func Preprocess(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
