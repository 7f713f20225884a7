package types

// Pure JSON contract for Slide Deck product content. Not a DB model.

type SlideDeckContent struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Slide carries a template tag selecting a fixed layout rule plus the
// template's named text fields. Field values still equal to the editor's
// "Click to add ..." placeholders are treated as empty by the renderer.
type Slide struct {
	TemplateID string            `json:"template_id"`
	Fields     map[string]string `json:"fields"`
	Bullets    []string          `json:"bullets,omitempty"`
	ImageURL   string            `json:"image_url,omitempty"`
}
