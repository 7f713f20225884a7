package types

// Canonical quiz content contract. Stored quiz blobs arrive with absent,
// numeric, or arbitrary string ids; the export normalizer rewrites them into
// this shape before rendering: option and sort-item ids are letters A, B, C,
// ... in original order, matching-prompt ids are 1-based digit strings, and
// every correct-answer reference uses those canonical ids.

const (
	QuestionTypeMultipleChoice = "multiple-choice"
	QuestionTypeMultiSelect    = "multi-select"
	QuestionTypeMatching       = "matching"
	QuestionTypeSorting        = "sorting"
	QuestionTypeOpenAnswer     = "open-answer"
)

type QuizContent struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Text        string `json:"text"`
	Type        string `json:"type"`
	Explanation string `json:"explanation,omitempty"`

	// multiple-choice / multi-select / matching targets
	Options []QuizOption `json:"options,omitempty"`
	// matching left-hand side
	Prompts []QuizPrompt `json:"prompts,omitempty"`
	// sorting
	SortItems []QuizOption `json:"sort_items,omitempty"`

	CorrectOptionID  string            `json:"correct_option_id,omitempty"`
	CorrectOptionIDs []string          `json:"correct_option_ids,omitempty"`
	CorrectMatches   map[string]string `json:"correct_matches,omitempty"`
	CorrectOrder     []string          `json:"correct_order,omitempty"`
	AcceptedAnswers  []string          `json:"accepted_answers,omitempty"`
}

type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuizPrompt struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
