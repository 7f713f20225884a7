package export

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursesmith-backend/internal/types"
)

const sampleQuizBlob = `{
	"title": "Checkpoint",
	"questions": [
		{
			"text": "Pick one",
			"type": "multiple-choice",
			"explanation": "Because reasons.",
			"options": [{"id": "1", "text": "Yes"}, {"id": "2", "text": "No"}],
			"correct_option_id": "1"
		},
		{
			"text": "Pick many",
			"type": "multi-select",
			"options": [{"text": "a"}, {"text": "b"}, {"text": "c"}],
			"correct_option_ids": ["1", "3"]
		},
		{
			"text": "Match them",
			"type": "matching",
			"prompts": [{"text": "left"}],
			"options": [{"text": "right"}],
			"correct_matches": {"1": "1"}
		},
		{
			"text": "Sort them",
			"type": "sorting",
			"sort_items": [{"text": "x"}, {"text": "y"}],
			"correct_order": ["1", "2"]
		},
		{
			"text": "Type it",
			"type": "open-answer",
			"accepted_answers": ["forty-two"]
		}
	]
}`

func renderQuiz(t *testing.T) string {
	t.Helper()
	r := &quizRenderer{log: testLogger(t)}
	html, err := r.Render(&types.Product{
		ID:      uuid.New(),
		Name:    "Quiz - Bootcamp: Intro",
		Kind:    types.ProductKindQuiz,
		Content: []byte(sampleQuizBlob),
	}, RenderContext{PlanTitle: "Bootcamp", LessonTitle: "Intro"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return html
}

func TestQuizRendererAffordances(t *testing.T) {
	html := renderQuiz(t)

	cases := []struct {
		name string
		want string
	}{
		{name: "radio_for_multiple_choice", want: `type="radio" name="q0"`},
		{name: "checkbox_for_multi_select", want: `type="checkbox" name="q1"`},
		{name: "dropdown_per_matching_prompt", want: `<select data-question="2" data-prompt="1"`},
		{name: "draggable_sorting_list", want: `<li draggable="true" data-id="A"`},
		{name: "free_text_for_open_answer", want: `<textarea class="open-answer" data-question="4"`},
		{name: "numbered_blocks", want: `<span class="qnum">5.</span>`},
		{name: "hidden_explanation_panel", want: `class="explanation hidden"`},
		{name: "explanation_text", want: "Because reasons."},
		{name: "submit_button", want: `id="submit-btn"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !strings.Contains(html, tc.want) {
				t.Errorf("expected %q in quiz document", tc.want)
			}
		})
	}
}

func TestQuizRendererEmbedsCanonicalAnswerKey(t *testing.T) {
	html := renderQuiz(t)

	for _, want := range []string{
		`"correct":"A"`,
		`"corrects":["A","C"]`,
		`"matches":{"1":"A"}`,
		`"order":["A","B"]`,
		`"accepted":["forty-two"]`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected answer key fragment %q in document", want)
		}
	}
}

func TestQuizRendererScoringEngine(t *testing.T) {
	html := renderQuiz(t)

	if !strings.Contains(html, fmt.Sprintf("var PASS_THRESHOLD = %d;", PassThreshold)) {
		t.Errorf("pass threshold must be embedded")
	}
	for _, want := range []string{
		"Math.round(100 * correct / total)",
		"API_1484_11",
		"Initialize('')",
		"cmi.score.scaled",
		"cmi.success_status",
		"cmi.completion_status",
		"Terminate('')",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in scoring engine", want)
		}
	}
}

func TestQuizRendererEmptyQuizStillRenders(t *testing.T) {
	r := &quizRenderer{log: testLogger(t)}
	html, err := r.Render(&types.Product{
		ID:      uuid.New(),
		Name:    "Empty Quiz",
		Kind:    types.ProductKindQuiz,
		Content: []byte(`{"questions": []}`),
	}, RenderContext{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `class="question"`) {
		t.Errorf("placeholder question must render")
	}
}
