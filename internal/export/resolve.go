package export

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursesmith-backend/internal/types"
)

// kindAliases maps a lesson's requested content-type tag to the product
// kinds that can fill the slot. One-pager slots accept One Pager, Text
// Presentation, and PDF Lesson interchangeably; the three names drifted
// apart over time but describe the same artifact family.
var kindAliases = map[string][]string{
	types.ContentTypePresentation: {types.ProductKindSlideDeck},
	types.ContentTypeOnePager:     {types.ProductKindOnePager, types.ProductKindTextPresentation, types.ProductKindPDFLesson},
	"onepager":                    {types.ProductKindOnePager, types.ProductKindTextPresentation, types.ProductKindPDFLesson},
	types.ContentTypeQuiz:         {types.ProductKindQuiz},
}

// kindPrefixes are the generator's naming prefixes, one per renderable kind.
var kindPrefixes = map[string]string{
	types.ProductKindSlideDeck:        "Presentation",
	types.ProductKindOnePager:         "One Pager",
	types.ProductKindTextPresentation: "Text Presentation",
	types.ProductKindPDFLesson:        "PDF Lesson",
	types.ProductKindQuiz:             "Quiz",
}

// nameMatcher is one precedence level of the name-matching ladder. Matchers
// run in declaration order and the first hit wins, so earlier entries must
// stay strictly more specific than later ones.
type nameMatcher struct {
	name  string
	match func(p *types.Product, planTitle, lessonTitle string) bool
}

var nameMatchers = []nameMatcher{
	{
		name: "quiz_prefixed_plan_and_lesson",
		match: func(p *types.Product, planTitle, lessonTitle string) bool {
			if p.Kind != types.ProductKindQuiz {
				return false
			}
			return nameEqual(p.Name, fmt.Sprintf("Quiz - %s: %s", planTitle, lessonTitle))
		},
	},
	{
		name: "kind_prefixed_plan_and_lesson",
		match: func(p *types.Product, planTitle, lessonTitle string) bool {
			prefix, ok := kindPrefixes[p.Kind]
			if !ok {
				return false
			}
			return nameEqual(p.Name, fmt.Sprintf("%s - %s: %s", prefix, planTitle, lessonTitle))
		},
	},
	{
		name: "plan_and_lesson",
		match: func(p *types.Product, planTitle, lessonTitle string) bool {
			return nameEqual(p.Name, fmt.Sprintf("%s: %s", planTitle, lessonTitle))
		},
	},
	{
		name: "secondary_name_is_lesson",
		match: func(p *types.Product, planTitle, lessonTitle string) bool {
			return nameEqual(p.SecondaryName, lessonTitle)
		},
	},
	{
		name: "legacy_plan_name_lesson_secondary",
		match: func(p *types.Product, planTitle, lessonTitle string) bool {
			return nameEqual(p.Name, planTitle) && nameEqual(p.SecondaryName, lessonTitle)
		},
	},
	{
		name: "name_is_lesson",
		match: func(p *types.Product, planTitle, lessonTitle string) bool {
			return nameEqual(p.Name, lessonTitle)
		},
	},
}

// ResolveProduct binds a (lesson, requested content type) slot to at most
// one product from the pool. Products whose id is already in usedIDs are
// never considered; callers mark the returned product used before resolving
// the next slot. Returns nil when nothing matches.
func ResolveProduct(lesson types.TrainingLesson, requestedType string, planTitle string, pool []*types.Product, usedIDs map[uuid.UUID]bool) *types.Product {
	kinds, ok := kindAliases[normalizeToken(requestedType)]
	if !ok {
		return nil
	}

	candidates := make([]*types.Product, 0, len(pool))
	for _, p := range pool {
		if p == nil || usedIDs[p.ID] {
			continue
		}
		if !kindCompatible(p.Kind, kinds) {
			continue
		}
		candidates = append(candidates, p)
	}

	for _, m := range nameMatchers {
		for _, p := range candidates {
			if m.match(p, planTitle, lesson.Title) {
				return p
			}
		}
	}
	return nil
}

func kindCompatible(kind string, accepted []string) bool {
	for _, k := range accepted {
		if kind == k {
			return true
		}
	}
	return false
}

// nameEqual compares names case-insensitively with whitespace collapsed.
func nameEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return normalizeToken(a) == normalizeToken(b)
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
