package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursesmith-backend/internal/types"
)

func renderDeck(t *testing.T, content types.SlideDeckContent) string {
	t.Helper()
	blob, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r := &slideDeckRenderer{log: testLogger(t)}
	html, err := r.Render(&types.Product{
		ID:      uuid.New(),
		Name:    "Deck",
		Kind:    types.ProductKindSlideDeck,
		Content: blob,
	}, RenderContext{PlanTitle: "Bootcamp", LessonTitle: "Intro"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return html
}

func TestSlideDeckPlaceholderFieldsOmitted(t *testing.T) {
	html := renderDeck(t, types.SlideDeckContent{
		Title: "My Deck",
		Slides: []types.Slide{
			{
				TemplateID: "title-slide",
				Fields: map[string]string{
					"title":    "Welcome",
					"subtitle": "Click to add subtitle",
				},
			},
		},
	})

	if !strings.Contains(html, "Welcome") {
		t.Errorf("real field value missing")
	}
	if strings.Contains(html, "Click to add") {
		t.Errorf("placeholder field value must be omitted:\n%s", html)
	}
	if strings.Contains(html, "subtitle\">") && strings.Contains(html, "<p class=\"subtitle\">") {
		t.Errorf("empty subtitle must not produce an element")
	}
}

func TestSlideDeckTemplates(t *testing.T) {
	cases := []struct {
		name       string
		slide      types.Slide
		wantPieces []string
	}{
		{
			name: "bullet_points",
			slide: types.Slide{
				TemplateID: "bullet-points",
				Fields:     map[string]string{"title": "Agenda"},
				Bullets:    []string{"One", "Two"},
			},
			wantPieces: []string{"<h2>Agenda</h2>", "<li>One</li>", "<li>Two</li>"},
		},
		{
			name: "two_column",
			slide: types.Slide{
				TemplateID: "two-column",
				Fields:     map[string]string{"title": "Compare", "left": "Before", "right": "After"},
			},
			wantPieces: []string{"class=\"columns\"", "Before", "After"},
		},
		{
			name: "process_steps",
			slide: types.Slide{
				TemplateID: "process-steps",
				Fields:     map[string]string{"title": "How"},
				Bullets:    []string{"First", "Second"},
			},
			wantPieces: []string{"<ol class=\"steps\">", "<li>First</li>"},
		},
		{
			name: "big_image_left",
			slide: types.Slide{
				TemplateID: "big-image-left",
				Fields:     map[string]string{"title": "Look", "body": "Caption"},
				ImageURL:   "https://example.com/pic.png",
			},
			wantPieces: []string{`src="https://example.com/pic.png"`, "Caption"},
		},
		{
			name: "unknown_template_falls_back",
			slide: types.Slide{
				TemplateID: "hologram-3d",
				Fields:     map[string]string{"title": "Still here", "body": "Body text"},
			},
			wantPieces: []string{"Still here", "Body text"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			html := renderDeck(t, types.SlideDeckContent{Title: "D", Slides: []types.Slide{tc.slide}})
			for _, piece := range tc.wantPieces {
				if !strings.Contains(html, piece) {
					t.Errorf("expected %q in rendered slide:\n%s", piece, html)
				}
			}
		})
	}
}

func TestSlideDeckUnparseableBlobFallsBack(t *testing.T) {
	r := &slideDeckRenderer{log: testLogger(t)}
	html, err := r.Render(&types.Product{
		ID:      uuid.New(),
		Name:    "Broken Deck",
		Kind:    types.ProductKindSlideDeck,
		Content: []byte("not json"),
	}, RenderContext{})
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if !strings.Contains(html, "Broken Deck") {
		t.Errorf("fallback document must carry the product title")
	}
}

func TestSlideDeckEscapesHTML(t *testing.T) {
	html := renderDeck(t, types.SlideDeckContent{
		Slides: []types.Slide{{
			TemplateID: "title-slide",
			Fields:     map[string]string{"title": "<script>alert(1)</script>"},
		}},
	})
	if strings.Contains(html, "<script>alert") {
		t.Errorf("field values must be escaped:\n%s", html)
	}
}
