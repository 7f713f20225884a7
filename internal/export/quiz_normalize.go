package export

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/coursesmith-backend/internal/types"
)

// Stored quiz blobs come from several generations of the generator: id
// fields may be missing entirely, numeric, or free-form strings like
// "option_2" or "B)". NormalizeQuiz rewrites any of those shapes into the
// canonical contract in types: letters for options and sort items, 1-based
// digit strings for matching prompts, and correct-answer references
// expressed in those canonical ids. It never drops a question and never
// fails; malformed sub-objects degrade to empty lists.

type rawQuiz struct {
	Title     string        `json:"title"`
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	Text        string      `json:"text"`
	Type        string      `json:"type"`
	Explanation string      `json:"explanation"`
	Options     []rawEntry  `json:"options"`
	Prompts     []rawEntry  `json:"prompts"`
	SortItems   []rawEntry  `json:"sort_items"`
	CorrectID   looseID    `json:"correct_option_id"`
	CorrectIDs  []looseID  `json:"correct_option_ids"`
	Matches     looseIDMap `json:"correct_matches"`
	Order       []looseID  `json:"correct_order"`
	Accepted    []string   `json:"accepted_answers"`
}

type rawEntry struct {
	ID   looseID `json:"id"`
	Text string  `json:"text"`
}

// looseID tolerates JSON strings, numbers, and null in id positions.
type looseID string

func (l *looseID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*l = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*l = ""
			return nil
		}
		*l = looseID(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*l = ""
		return nil
	}
	*l = looseID(n.String())
	return nil
}

type looseIDMap map[string]looseID

// NormalizeQuiz canonicalizes a stored quiz blob. Normalizing an already
// canonical quiz is a no-op.
func NormalizeQuiz(raw []byte) types.QuizContent {
	var rq rawQuiz
	_ = json.Unmarshal(raw, &rq)

	out := types.QuizContent{Title: strings.TrimSpace(rq.Title)}
	for _, q := range rq.Questions {
		out.Questions = append(out.Questions, normalizeQuestion(q))
	}
	if len(out.Questions) == 0 {
		out.Questions = append(out.Questions, placeholderQuestion())
	}
	return out
}

// placeholderQuestion keeps downstream rendering away from the zero-question
// case when a stored quiz has no structured questions at all.
func placeholderQuestion() types.QuizQuestion {
	return types.QuizQuestion{
		Text: "This quiz has no questions yet. Mark the lesson as reviewed to continue.",
		Type: types.QuestionTypeMultipleChoice,
		Options: []types.QuizOption{
			{ID: "A", Text: "I have reviewed this lesson"},
		},
		CorrectOptionID: "A",
	}
}

func normalizeQuestion(q rawQuestion) types.QuizQuestion {
	nq := types.QuizQuestion{
		Text:        strings.TrimSpace(q.Text),
		Type:        normalizeQuestionType(q.Type),
		Explanation: strings.TrimSpace(q.Explanation),
	}

	switch nq.Type {
	case types.QuestionTypeMultipleChoice:
		options, table := canonicalizeLetters(q.Options)
		nq.Options = options
		nq.CorrectOptionID = table.resolve(string(q.CorrectID))
	case types.QuestionTypeMultiSelect:
		options, table := canonicalizeLetters(q.Options)
		nq.Options = options
		for _, id := range q.CorrectIDs {
			if canonical := table.resolve(string(id)); canonical != "" {
				nq.CorrectOptionIDs = append(nq.CorrectOptionIDs, canonical)
			}
		}
	case types.QuestionTypeMatching:
		prompts, promptTable := canonicalizeNumbers(q.Prompts)
		options, optionTable := canonicalizeLetters(q.Options)
		nq.Prompts = prompts
		nq.Options = options
		nq.CorrectMatches = map[string]string{}
		for promptID, optionID := range q.Matches {
			cp := promptTable.resolve(promptID)
			co := optionTable.resolve(string(optionID))
			if cp != "" && co != "" {
				nq.CorrectMatches[cp] = co
			}
		}
	case types.QuestionTypeSorting:
		items, table := canonicalizeLetters(q.SortItems)
		nq.SortItems = items
		order := make([]string, 0, len(q.Order))
		resolvedAll := len(q.Order) == len(items) && len(items) > 0
		for _, id := range q.Order {
			canonical := table.resolve(string(id))
			if canonical == "" {
				resolvedAll = false
				break
			}
			order = append(order, canonical)
		}
		if resolvedAll {
			nq.CorrectOrder = order
		} else {
			// Unresolvable stored order: fall back to the natural order of
			// the canonicalized items so the question stays answerable.
			for i := range items {
				nq.CorrectOrder = append(nq.CorrectOrder, letterID(i))
			}
		}
	case types.QuestionTypeOpenAnswer:
		nq.AcceptedAnswers = append(nq.AcceptedAnswers, q.Accepted...)
	}
	return nq
}

func normalizeQuestionType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case types.QuestionTypeMultiSelect, "multiselect", "multiple-select":
		return types.QuestionTypeMultiSelect
	case types.QuestionTypeMatching:
		return types.QuestionTypeMatching
	case types.QuestionTypeSorting, "ordering":
		return types.QuestionTypeSorting
	case types.QuestionTypeOpenAnswer, "open", "free-text":
		return types.QuestionTypeOpenAnswer
	default:
		return types.QuestionTypeMultipleChoice
	}
}

// idTable maps every plausible original identifier of an entry to its newly
// assigned canonical id.
type idTable map[string]string

var (
	trailingLetterPattern = regexp.MustCompile(`([A-Za-z])\s*\)?\s*$`)
	trailingDigitsPattern = regexp.MustCompile(`(\d+)\s*\)?\s*$`)
)

// resolve looks a raw token up in the table, falling back to a trailing
// letter or digit extracted from the token. Returns "" when nothing
// resolves.
func (t idTable) resolve(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if canonical, ok := t[strings.ToLower(token)]; ok {
		return canonical
	}
	if m := trailingLetterPattern.FindStringSubmatch(token); m != nil {
		if canonical, ok := t[strings.ToLower(m[1])]; ok {
			return canonical
		}
	}
	if m := trailingDigitsPattern.FindStringSubmatch(token); m != nil {
		if canonical, ok := t[m[1]]; ok {
			return canonical
		}
	}
	return ""
}

func (t idTable) put(key, canonical string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	// Literal original ids are inserted first and win over index-derived
	// keys, so an original id of "2" on the first entry is not shadowed.
	if _, exists := t[key]; !exists {
		t[key] = canonical
	}
}

func canonicalizeLetters(entries []rawEntry) ([]types.QuizOption, idTable) {
	out := make([]types.QuizOption, 0, len(entries))
	table := idTable{}
	for i, e := range entries {
		canonical := letterID(i)
		out = append(out, types.QuizOption{ID: canonical, Text: strings.TrimSpace(e.Text)})
		table.put(string(e.ID), canonical)
	}
	for i := range entries {
		canonical := letterID(i)
		table.put(strconv.Itoa(i), canonical)
		table.put(strconv.Itoa(i+1), canonical)
		table.put(canonical, canonical)
	}
	return out, table
}

func canonicalizeNumbers(entries []rawEntry) ([]types.QuizPrompt, idTable) {
	out := make([]types.QuizPrompt, 0, len(entries))
	table := idTable{}
	for i, e := range entries {
		canonical := strconv.Itoa(i + 1)
		out = append(out, types.QuizPrompt{ID: canonical, Text: strings.TrimSpace(e.Text)})
		table.put(string(e.ID), canonical)
	}
	for i := range entries {
		canonical := strconv.Itoa(i + 1)
		table.put(strconv.Itoa(i), canonical)
		table.put(canonical, canonical)
	}
	return out, table
}

// letterID returns A, B, ..., Z, AA, AB, ... for an index.
func letterID(i int) string {
	var b []byte
	n := i
	for {
		b = append([]byte{byte('A' + n%26)}, b...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(b)
}
