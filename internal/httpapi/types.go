package httpapi

import (
	"time"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
)

type sectionSummaryResponse struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      content.Category `json:"category"`
	CategoryLabel string           `json:"category_label"`
	Link          string           `json:"link"`
	TopicCount    int              `json:"topic_count"`
	QuestionCount int              `json:"question_count"`
	MustKnowCount int              `json:"must_know_count"`
}

type sectionsResponse struct {
	Sections []sectionSummaryResponse `json:"sections"`
}

type sectionResponse struct {
	sectionSummaryResponse
	Keywords   []string        `json:"keywords"`
	Topics     []content.Topic `json:"topics"`
	LastResult *quiz.Result    `json:"last_result,omitempty"`
}

type questionsResponse struct {
	SectionID     string                `json:"section_id"`
	Priority      string                `json:"priority,omitempty"`
	QuestionCount int                   `json:"question_count"`
	Questions     []quiz.PublicQuestion `json:"questions"`
}

type submitRequest struct {
	Priority  string                   `json:"priority,omitempty"`
	Responses []quiz.SubmittedResponse `json:"responses"`
}

type submitResponse struct {
	SectionID   string                `json:"section_id"`
	Score       int                   `json:"score"`
	Total       int                   `json:"total"`
	Percent     int                   `json:"percent"`
	Passed      bool                  `json:"passed"`
	CompletedAt time.Time             `json:"completed_at"`
	Saved       bool                  `json:"saved"`
	Results     []quiz.ResponseResult `json:"results"`
}

type responsesRequest struct {
	Responses []quiz.SubmittedResponse `json:"responses"`
}

type responsesResponse struct {
	Results []quiz.ResponseResult `json:"results"`
}

type progressResponse struct {
	progress.Progress
	Stats progress.Stats `json:"stats"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

type topicRequest struct {
	Completed *bool `json:"completed"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Type    string          `json:"type,omitempty"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
}

type healthResponse struct {
	Status string        `json:"status"`
	Stats  content.Stats `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}
