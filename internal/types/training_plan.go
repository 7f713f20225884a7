package types

// Pure JSON contract for Training Plan product content. Not a DB model.

// Recommended content type tags carried on plan lessons.
const (
	ContentTypePresentation = "presentation"
	ContentTypeOnePager     = "one-pager"
	ContentTypeQuiz         = "quiz"
	ContentTypeVideoLesson  = "video-lesson"
)

type TrainingPlanContent struct {
	Title    string            `json:"title"`
	Sections []TrainingSection `json:"sections"`
}

type TrainingSection struct {
	Title   string           `json:"title"`
	Lessons []TrainingLesson `json:"lessons"`
}

type TrainingLesson struct {
	Title string `json:"title"`
	// RecommendedContent lists content-type tags like "presentation",
	// "one-pager", "quiz", "video-lesson".
	RecommendedContent []string `json:"recommended_content"`
}
