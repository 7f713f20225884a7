package export

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

// PassThreshold is the percentage score at which a quiz attempt counts as
// passed.
const PassThreshold = 70

// quizRenderer emits one interactive quiz document: a numbered block per
// question with a type-specific input affordance, a hidden explanation
// panel per question, and an embedded scoring engine that grades on submit
// and reports the result through the hosting LMS runtime when one is
// discoverable.
type quizRenderer struct {
	log *logger.Logger
}

// answerKey is the per-question grading record embedded into the document
// for the client-side engine.
type answerKey struct {
	Type     string            `json:"type"`
	Correct  string            `json:"correct,omitempty"`
	Corrects []string          `json:"corrects,omitempty"`
	Matches  map[string]string `json:"matches,omitempty"`
	Order    []string          `json:"order,omitempty"`
	Accepted []string          `json:"accepted,omitempty"`
}

func (r *quizRenderer) Render(product *types.Product, rctx RenderContext) (string, error) {
	quiz := NormalizeQuiz(product.Content)

	title := strings.TrimSpace(quiz.Title)
	if title == "" {
		title = product.Name
	}

	keys := make([]answerKey, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		keys = append(keys, answerKey{
			Type:     q.Type,
			Correct:  q.CorrectOptionID,
			Corrects: q.CorrectOptionIDs,
			Matches:  q.CorrectMatches,
			Order:    q.CorrectOrder,
			Accepted: q.AcceptedAnswers,
		})
	}
	keyJSON, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("marshal quiz answer key: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(quizCSS)
	b.WriteString("</style>\n</head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>\n")

	for i, q := range quiz.Questions {
		writeQuestionBlock(&b, i, q)
	}

	b.WriteString("<div class=\"controls\">\n<button id=\"submit-btn\" type=\"button\">Submit answers</button>\n</div>\n")
	b.WriteString("<div id=\"results\" class=\"hidden\"></div>\n")
	b.WriteString("<script>\nvar ANSWER_KEY = ")
	b.Write(keyJSON) // json.Marshal escapes <, >, & so the key is script-safe
	b.WriteString(";\nvar PASS_THRESHOLD = ")
	b.WriteString(fmt.Sprintf("%d", PassThreshold))
	b.WriteString(";\n")
	b.WriteString(quizEngineJS)
	b.WriteString("</script>\n</body>\n</html>")
	return b.String(), nil
}

func writeQuestionBlock(b *strings.Builder, index int, q types.QuizQuestion) {
	fmt.Fprintf(b, "<div class=\"question\" data-index=\"%d\">\n", index)
	fmt.Fprintf(b, "<h3><span class=\"qnum\">%d.</span> %s</h3>\n", index+1, html.EscapeString(q.Text))

	switch q.Type {
	case types.QuestionTypeMultipleChoice:
		for _, opt := range q.Options {
			fmt.Fprintf(b, "<label class=\"choice\"><input type=\"radio\" name=\"q%d\" value=%q> %s</label>\n",
				index, opt.ID, html.EscapeString(opt.Text))
		}
	case types.QuestionTypeMultiSelect:
		for _, opt := range q.Options {
			fmt.Fprintf(b, "<label class=\"choice\"><input type=\"checkbox\" name=\"q%d\" value=%q> %s</label>\n",
				index, opt.ID, html.EscapeString(opt.Text))
		}
	case types.QuestionTypeMatching:
		for _, prompt := range q.Prompts {
			fmt.Fprintf(b, "<div class=\"match-row\"><span class=\"prompt\">%s</span>\n", html.EscapeString(prompt.Text))
			fmt.Fprintf(b, "<select data-question=\"%d\" data-prompt=%q>\n<option value=\"\">&mdash;</option>\n", index, prompt.ID)
			for _, opt := range q.Options {
				fmt.Fprintf(b, "<option value=%q>%s</option>\n", opt.ID, html.EscapeString(opt.Text))
			}
			b.WriteString("</select>\n</div>\n")
		}
	case types.QuestionTypeSorting:
		fmt.Fprintf(b, "<ul class=\"sortable\" data-question=\"%d\">\n", index)
		for _, item := range q.SortItems {
			fmt.Fprintf(b, "<li draggable=\"true\" data-id=%q>%s</li>\n", item.ID, html.EscapeString(item.Text))
		}
		b.WriteString("</ul>\n")
	case types.QuestionTypeOpenAnswer:
		fmt.Fprintf(b, "<textarea class=\"open-answer\" data-question=\"%d\" rows=\"3\" placeholder=\"Type your answer\"></textarea>\n", index)
	}

	if strings.TrimSpace(q.Explanation) != "" {
		fmt.Fprintf(b, "<div class=\"explanation hidden\">%s</div>\n", html.EscapeString(q.Explanation))
	} else {
		b.WriteString("<div class=\"explanation hidden\"></div>\n")
	}
	b.WriteString("</div>\n")
}

const quizCSS = `body { font-family: Helvetica, Arial, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1.5rem; line-height: 1.55; color: #1c1c28; }
h1 { border-bottom: 3px solid #1c1c28; padding-bottom: .4rem; }
.question { margin: 1.75rem 0; padding: 1rem 1.25rem; border: 1px solid #d8d8e0; border-radius: 6px; }
.question.correct { border-color: #2e7d32; background: #f1f8f1; }
.question.incorrect { border-color: #c62828; background: #fdf3f3; }
.qnum { color: #667; }
.choice { display: block; margin: .35rem 0; cursor: pointer; }
.match-row { display: flex; align-items: center; gap: 1rem; margin: .4rem 0; }
.match-row .prompt { flex: 1; }
.sortable { list-style: none; padding: 0; }
.sortable li { padding: .5rem .75rem; margin: .3rem 0; background: #f4f4f8; border: 1px solid #ccd; border-radius: 4px; cursor: grab; }
.sortable li.dragging { opacity: .5; }
.open-answer { width: 100%; box-sizing: border-box; }
.explanation { margin-top: .75rem; padding: .6rem .9rem; background: #fffbe8; border-left: 4px solid #c9a227; font-size: .95rem; }
.hidden { display: none; }
.controls { margin: 2rem 0; }
#submit-btn { font-size: 1.05rem; padding: .6rem 1.6rem; background: #1c1c28; color: #fff; border: none; border-radius: 4px; cursor: pointer; }
#results { margin: 1.5rem 0; padding: 1rem 1.25rem; border-radius: 6px; font-size: 1.15rem; }
#results.passed { background: #f1f8f1; border: 1px solid #2e7d32; }
#results.failed { background: #fdf3f3; border: 1px solid #c62828; }
`

// quizEngineJS is the embedded interpreter: it tracks the user's current
// answer per question, grades on submit with type-specific equality, and
// talks SCORM 2004 to the hosting runtime when one is reachable through the
// window hierarchy.
const quizEngineJS = `var answers = {};

function setAnswer(index, value) {
  answers[index] = value;
}

function initInputs() {
  document.querySelectorAll('.question input[type=radio]').forEach(function (el) {
    el.addEventListener('change', function () {
      setAnswer(parseInt(el.name.slice(1), 10), el.value);
    });
  });
  document.querySelectorAll('.question input[type=checkbox]').forEach(function (el) {
    el.addEventListener('change', function () {
      var index = parseInt(el.name.slice(1), 10);
      var picked = [];
      document.querySelectorAll('input[name=' + el.name + ']:checked').forEach(function (c) {
        picked.push(c.value);
      });
      setAnswer(index, picked);
    });
  });
  document.querySelectorAll('.question select[data-prompt]').forEach(function (el) {
    el.addEventListener('change', function () {
      var index = parseInt(el.getAttribute('data-question'), 10);
      var mapping = answers[index] || {};
      mapping[el.getAttribute('data-prompt')] = el.value;
      setAnswer(index, mapping);
    });
  });
  document.querySelectorAll('.question textarea[data-question]').forEach(function (el) {
    el.addEventListener('input', function () {
      setAnswer(parseInt(el.getAttribute('data-question'), 10), el.value);
    });
  });
  document.querySelectorAll('.sortable').forEach(initSortable);
}

function initSortable(list) {
  var index = parseInt(list.getAttribute('data-question'), 10);
  var dragged = null;
  list.querySelectorAll('li').forEach(function (item) {
    item.addEventListener('dragstart', function () {
      dragged = item;
      item.classList.add('dragging');
    });
    item.addEventListener('dragend', function () {
      item.classList.remove('dragging');
      dragged = null;
      setAnswer(index, readOrder(list));
    });
  });
  list.addEventListener('dragover', function (ev) {
    ev.preventDefault();
    if (!dragged) return;
    var after = null;
    list.querySelectorAll('li:not(.dragging)').forEach(function (li) {
      var rect = li.getBoundingClientRect();
      if (ev.clientY < rect.top + rect.height / 2 && !after) after = li;
    });
    if (after) {
      list.insertBefore(dragged, after);
    } else {
      list.appendChild(dragged);
    }
  });
  setAnswer(index, readOrder(list));
}

function readOrder(list) {
  var order = [];
  list.querySelectorAll('li').forEach(function (li) {
    order.push(li.getAttribute('data-id'));
  });
  return order;
}

function gradeQuestion(key, answer) {
  switch (key.type) {
    case 'multiple-choice':
      return typeof answer === 'string' && answer !== '' && answer === key.correct;
    case 'multi-select': {
      var want = key.corrects || [];
      var got = answer || [];
      if (!Array.isArray(got) || got.length !== want.length) return false;
      return want.every(function (id) { return got.indexOf(id) !== -1; });
    }
    case 'matching': {
      var matches = key.matches || {};
      var picked = answer || {};
      var prompts = Object.keys(matches);
      if (prompts.length === 0) return false;
      return prompts.every(function (p) { return picked[p] === matches[p]; });
    }
    case 'sorting': {
      var order = key.order || [];
      var current = answer || [];
      if (current.length !== order.length) return false;
      return order.every(function (id, i) { return current[i] === id; });
    }
    case 'open-answer': {
      var accepted = key.accepted || [];
      var text = (answer || '').trim().toLowerCase();
      if (text === '') return false;
      return accepted.some(function (a) { return a.trim().toLowerCase() === text; });
    }
  }
  return false;
}

function submitQuiz() {
  var total = ANSWER_KEY.length;
  var correct = 0;
  ANSWER_KEY.forEach(function (key, i) {
    var ok = gradeQuestion(key, answers[i]);
    if (ok) correct++;
    var block = document.querySelector('.question[data-index="' + i + '"]');
    if (block) {
      block.classList.add(ok ? 'correct' : 'incorrect');
    }
  });

  document.querySelectorAll('.explanation').forEach(function (el) {
    el.classList.remove('hidden');
  });

  var score = Math.round(100 * correct / total);
  var passed = score >= PASS_THRESHOLD;
  var results = document.getElementById('results');
  results.className = passed ? 'passed' : 'failed';
  results.textContent = 'Score: ' + score + '% (' + correct + '/' + total + ') — ' + (passed ? 'passed' : 'failed');

  reportToLMS(score, passed);
  document.getElementById('submit-btn').disabled = true;
}

var scormAPI = null;
var scormInitialized = false;

function findSCORMAPI() {
  var win = window;
  var hops = 0;
  while (win && hops < 7) {
    if (win.API_1484_11) return win.API_1484_11;
    if (win.parent === win) break;
    win = win.parent;
    hops++;
  }
  if (window.opener && window.opener.API_1484_11) return window.opener.API_1484_11;
  return null;
}

function initSCORM() {
  scormAPI = findSCORMAPI();
  if (!scormAPI) return;
  try {
    scormAPI.Initialize('');
    scormInitialized = true;
  } catch (e) {
    scormAPI = null;
  }
}

function reportToLMS(score, passed) {
  if (!scormAPI || !scormInitialized) return;
  try {
    scormAPI.SetValue('cmi.score.raw', String(score));
    scormAPI.SetValue('cmi.score.min', '0');
    scormAPI.SetValue('cmi.score.max', '100');
    scormAPI.SetValue('cmi.score.scaled', String(score / 100));
    scormAPI.SetValue('cmi.success_status', passed ? 'passed' : 'failed');
    scormAPI.SetValue('cmi.completion_status', 'completed');
    scormAPI.Commit('');
  } catch (e) {
    // runtime gone; nothing to report to
  }
}

function terminateSCORM() {
  if (!scormAPI || !scormInitialized) return;
  try {
    scormAPI.Commit('');
    scormAPI.Terminate('');
  } catch (e) {}
  scormInitialized = false;
}

document.addEventListener('DOMContentLoaded', function () {
  initInputs();
  initSCORM();
  document.getElementById('submit-btn').addEventListener('click', submitQuiz);
});
window.addEventListener('beforeunload', terminateSCORM);
`
