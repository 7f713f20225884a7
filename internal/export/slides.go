package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

// slideDeckRenderer concatenates every slide of a deck into one scrollable
// document with print-friendly page breaks. Each slide's template id selects
// a fixed layout rule; unknown ids fall back to title plus body text.
type slideDeckRenderer struct {
	log *logger.Logger
}

// Editor placeholder strings. A field still holding one of these was never
// filled in and renders as empty.
var placeholderFieldValues = map[string]bool{
	"click to add title":    true,
	"click to add subtitle": true,
	"click to add text":     true,
	"click to add content":  true,
}

func (r *slideDeckRenderer) Render(product *types.Product, rctx RenderContext) (string, error) {
	var content types.SlideDeckContent
	if err := unmarshalContent(product.Content, &content); err != nil {
		r.log.Warn("Slide deck blob not parseable, using fallback document", "product_id", product.ID, "error", err)
		return fallbackDocument(product.Name), nil
	}

	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = product.Name
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(slideDeckCSS)
	b.WriteString("</style>\n</head>\n<body>\n")

	for i, slide := range content.Slides {
		b.WriteString(fmt.Sprintf("<section class=\"slide slide-%s\" data-slide=\"%d\">\n", html.EscapeString(templateClass(slide.TemplateID)), i+1))
		b.WriteString(renderSlide(slide))
		b.WriteString("</section>\n")
	}

	b.WriteString("</body>\n</html>")
	return b.String(), nil
}

func templateClass(templateID string) string {
	id := strings.ToLower(strings.TrimSpace(templateID))
	if id == "" {
		return "plain"
	}
	return id
}

func renderSlide(slide types.Slide) string {
	title := slideField(slide, "title")
	subtitle := slideField(slide, "subtitle")
	body := slideField(slide, "body")

	var b strings.Builder
	switch strings.ToLower(strings.TrimSpace(slide.TemplateID)) {
	case "title-slide":
		if title != "" {
			b.WriteString("<h1>" + title + "</h1>\n")
		}
		if subtitle != "" {
			b.WriteString("<p class=\"subtitle\">" + subtitle + "</p>\n")
		}
	case "bullet-points":
		if title != "" {
			b.WriteString("<h2>" + title + "</h2>\n")
		}
		writeBullets(&b, slide.Bullets)
	case "two-column":
		if title != "" {
			b.WriteString("<h2>" + title + "</h2>\n")
		}
		left := slideField(slide, "left")
		right := slideField(slide, "right")
		b.WriteString("<div class=\"columns\">\n")
		b.WriteString("<div class=\"column\"><p>" + left + "</p></div>\n")
		b.WriteString("<div class=\"column\"><p>" + right + "</p></div>\n")
		b.WriteString("</div>\n")
	case "process-steps":
		if title != "" {
			b.WriteString("<h2>" + title + "</h2>\n")
		}
		if len(slide.Bullets) > 0 {
			b.WriteString("<ol class=\"steps\">\n")
			for _, step := range slide.Bullets {
				if s := cleanFieldValue(step); s != "" {
					b.WriteString("<li>" + s + "</li>\n")
				}
			}
			b.WriteString("</ol>\n")
		}
	case "big-image-left", "big-image-top":
		if img := strings.TrimSpace(slide.ImageURL); img != "" {
			b.WriteString(fmt.Sprintf("<img class=\"feature\" src=%q alt=\"\"/>\n", img))
		}
		if title != "" {
			b.WriteString("<h2>" + title + "</h2>\n")
		}
		if body != "" {
			b.WriteString("<p>" + body + "</p>\n")
		}
	default:
		if title != "" {
			b.WriteString("<h2>" + title + "</h2>\n")
		}
		if body != "" {
			b.WriteString("<p>" + body + "</p>\n")
		}
	}
	return b.String()
}

func writeBullets(b *strings.Builder, bullets []string) {
	wrote := false
	for _, bullet := range bullets {
		s := cleanFieldValue(bullet)
		if s == "" {
			continue
		}
		if !wrote {
			b.WriteString("<ul>\n")
			wrote = true
		}
		b.WriteString("<li>" + s + "</li>\n")
	}
	if wrote {
		b.WriteString("</ul>\n")
	}
}

// slideField returns the escaped value of a named field, empty when the
// field is missing or still holds an editor placeholder.
func slideField(slide types.Slide, name string) string {
	return cleanFieldValue(slide.Fields[name])
}

func cleanFieldValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || placeholderFieldValues[strings.ToLower(v)] {
		return ""
	}
	return html.EscapeString(v)
}

const slideDeckCSS = `body { margin: 0; font-family: Helvetica, Arial, sans-serif; background: #e8e8ee; }
.slide { box-sizing: border-box; width: 60rem; max-width: 96vw; min-height: 33.75rem; margin: 1.5rem auto; padding: 3rem 4rem; background: #fff; box-shadow: 0 2px 8px rgba(0,0,0,.15); page-break-after: always; }
.slide h1 { font-size: 2.6rem; margin-top: 6rem; text-align: center; }
.slide h2 { font-size: 1.8rem; }
.slide .subtitle { text-align: center; color: #667; font-size: 1.3rem; }
.slide ul, .slide ol.steps { font-size: 1.2rem; line-height: 1.9; }
.columns { display: flex; gap: 2rem; }
.column { flex: 1; }
img.feature { max-width: 100%; max-height: 20rem; object-fit: contain; }
.slide-big-image-left { display: flex; gap: 2rem; align-items: center; }
@media print { body { background: #fff; } .slide { box-shadow: none; margin: 0; } }
`
