package export

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

// documentRenderer renders One Pager, Text Presentation, and PDF Lesson
// products. The three kinds share the block-based body contract; which
// layout fits a given blob varies by generator vintage, so rendering tries
// a small ordered list of layouts and the first one that executes wins.
type documentRenderer struct {
	log *logger.Logger
}

type documentTemplateInput struct {
	Title    string
	Subtitle string
	Lesson   string
	Plan     string
	Blocks   []template.HTML
}

// Layout templates in preference order. Later entries expect strictly less
// of the input, so a sparse blob falls through to a layout it can satisfy.
var documentLayouts = []struct {
	name string
	tmpl *template.Template
}{
	{"standard", template.Must(template.New("standard").Parse(documentLayoutStandard))},
	{"compact", template.Must(template.New("compact").Parse(documentLayoutCompact))},
}

func (r *documentRenderer) Render(product *types.Product, rctx RenderContext) (string, error) {
	var content types.DocumentContent
	if err := unmarshalContent(product.Content, &content); err != nil {
		r.log.Warn("Document content blob not parseable, using fallback document", "product_id", product.ID, "error", err)
		return fallbackDocument(product.Name), nil
	}

	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = product.Name
	}

	input := documentTemplateInput{
		Title:    title,
		Subtitle: strings.TrimSpace(content.Subtitle),
		Lesson:   rctx.LessonTitle,
		Plan:     rctx.PlanTitle,
	}
	for _, block := range content.Blocks {
		if fragment := renderDocumentBlock(block); fragment != "" {
			input.Blocks = append(input.Blocks, template.HTML(fragment))
		}
	}

	for _, layout := range documentLayouts {
		var buf bytes.Buffer
		if err := layout.tmpl.Execute(&buf, input); err != nil {
			r.log.Debug("Document layout failed, trying next", "layout", layout.name, "error", err)
			continue
		}
		return buf.String(), nil
	}

	r.log.Warn("All document layouts failed, using fallback document", "product_id", product.ID)
	return fallbackDocument(title), nil
}

func renderDocumentBlock(block types.DocumentBlock) string {
	switch block.Kind {
	case "heading":
		return "<h2>" + mdInline(block.ContentMD) + "</h2>"
	case "paragraph":
		return "<div class=\"para\">" + mdToHTML(block.ContentMD) + "</div>"
	case "callout":
		return "<div class=\"callout\">" + mdToHTML(block.ContentMD) + "</div>"
	case "bullets":
		return renderList(block.Items, "ul")
	case "steps":
		return renderList(block.Items, "ol")
	case "divider":
		return "<hr/>"
	case "image":
		if strings.TrimSpace(block.ImageURL) == "" {
			return ""
		}
		return fmt.Sprintf("<img src=%q alt=\"\"/>", block.ImageURL)
	default:
		if strings.TrimSpace(block.ContentMD) != "" {
			return "<div class=\"para\">" + mdToHTML(block.ContentMD) + "</div>"
		}
		return ""
	}
}

func renderList(items []string, tag string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, item := range items {
		b.WriteString("<li>" + mdInline(item) + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

// fallbackDocument is the minimal document emitted when no layout can
// render the blob: title plus an explanatory placeholder line.
func fallbackDocument(title string) string {
	safe := html.EscapeString(strings.TrimSpace(title))
	if safe == "" {
		safe = "Untitled document"
	}
	return "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>" + safe + "</title>\n</head>\n<body>\n<h1>" + safe + "</h1>\n<p>This document could not be laid out from its stored content.</p>\n</body>\n</html>"
}

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

// markdownEngine is shared by every renderer in an export; goldmark
// instances are safe for concurrent use.
func markdownEngine() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithFormatOptions(
						chromahtml.WithClasses(true),
					),
				),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
				goldmarkhtml.WithXHTML(),
			),
		)
	})
	return markdown
}

func mdToHTML(md string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine().Convert([]byte(md), &buf); err != nil {
		return "<p>" + html.EscapeString(md) + "</p>"
	}
	return buf.String()
}

// mdInline renders markdown and strips the wrapping paragraph so the result
// can sit inside headings and list items.
func mdInline(md string) string {
	out := strings.TrimSpace(mdToHTML(md))
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")
	return strings.TrimSpace(out)
}

const documentLayoutStandard = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, 'Times New Roman', serif; max-width: 48rem; margin: 2rem auto; padding: 0 1.5rem; color: #1a1a2e; line-height: 1.6; }
h1 { font-size: 2rem; border-bottom: 3px solid #1a1a2e; padding-bottom: .5rem; }
h2 { font-size: 1.3rem; margin-top: 2rem; }
.subtitle { color: #555; font-size: 1.1rem; margin-top: -.5rem; }
.callout { background: #f4f4f8; border-left: 4px solid #4a4a8a; padding: .75rem 1rem; margin: 1rem 0; }
img { max-width: 100%; }
hr { border: none; border-top: 1px solid #ccc; margin: 2rem 0; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
{{range .Blocks}}{{.}}
{{end}}
</body>
</html>`

const documentLayoutCompact = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; max-width: 44rem; margin: 1rem auto; padding: 0 1rem; line-height: 1.5; }
h1 { font-size: 1.5rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Blocks}}{{.}}
{{end}}
</body>
</html>`
