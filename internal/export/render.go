package export

import (
	"github.com/yungbote/coursesmith-backend/internal/logger"
	"github.com/yungbote/coursesmith-backend/internal/types"
)

// RenderContext carries the outline surroundings of the slot being rendered.
type RenderContext struct {
	PlanTitle   string
	LessonTitle string
}

// Renderer turns one product's content blob into a self-contained HTML
// document. Each implementation privately owns the parsing of its kind's
// content shape. Render never fails for document-shaped kinds; the quiz
// renderer can fail only on a blob that is not JSON at all.
type Renderer interface {
	Render(product *types.Product, rctx RenderContext) (string, error)
}

// RendererForKind returns the renderer for a product kind, or false for
// kinds that have no exportable document form (e.g. Training Plan).
func RendererForKind(kind string, log *logger.Logger) (Renderer, bool) {
	switch kind {
	case types.ProductKindSlideDeck:
		return &slideDeckRenderer{log: log.With("renderer", "SlideDeckRenderer")}, true
	case types.ProductKindOnePager, types.ProductKindTextPresentation, types.ProductKindPDFLesson:
		return &documentRenderer{log: log.With("renderer", "DocumentRenderer")}, true
	case types.ProductKindQuiz:
		return &quizRenderer{log: log.With("renderer", "QuizRenderer")}, true
	default:
		return nil, false
	}
}
