package types

// Pure JSON contract for One Pager / Text Presentation / PDF Lesson product
// content. The three kinds share one block-based body shape; historical
// naming drift means any of them can satisfy a lesson's "one-pager" slot.

type DocumentContent struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	Blocks   []DocumentBlock `json:"blocks"`
}

type DocumentBlock struct {
	Kind      string   `json:"kind"` // heading|paragraph|bullets|steps|callout|divider|image
	ContentMD string   `json:"content_md,omitempty"`
	Items     []string `json:"items,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
}
