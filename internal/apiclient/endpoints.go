package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
)

// Section is the summary the server returns for each catalog section.
type Section struct {
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

// Submission is the scored outcome of one quiz attempt.
type Submission struct {
	SectionID   string                `json:"section_id"`
	Score       int                   `json:"score"`
	Total       int                   `json:"total"`
	Percent     int                   `json:"percent"`
	Passed      bool                  `json:"passed"`
	CompletedAt time.Time             `json:"completed_at"`
	Saved       bool                  `json:"saved"`
	Results     []quiz.ResponseResult `json:"results"`
}

type ProgressSummary struct {
	progress.Progress
	Stats progress.Stats `json:"stats"`
}

type sectionsResponse struct {
	Sections []Section `json:"sections"`
}

type questionsResponse struct {
	SectionID     string                `json:"section_id"`
	QuestionCount int                   `json:"question_count"`
	Questions     []quiz.PublicQuestion `json:"questions"`
}

type submitRequest struct {
	Priority  string                   `json:"priority,omitempty"`
	Responses []quiz.SubmittedResponse `json:"responses"`
}

type searchResponse struct {
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
}

type healthResponse struct {
	Status string        `json:"status"`
	Stats  content.Stats `json:"content"`
}

func (c *HTTPClient) Health(ctx context.Context) (content.Stats, error) {
	var payload healthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &payload); err != nil {
		return content.Stats{}, err
	}
	return payload.Stats, nil
}

func (c *HTTPClient) ListSections(ctx context.Context) ([]Section, error) {
	var payload sectionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/sections", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Sections, nil
}

func (c *HTTPClient) QuizQuestions(ctx context.Context, sectionID string, priority content.Priority) ([]quiz.PublicQuestion, error) {
	if strings.TrimSpace(sectionID) == "" {
		return nil, errors.New("section id is required")
	}

	path := "/api/quizzes/" + url.PathEscape(sectionID) + "/questions"
	if priority != "" {
		query := url.Values{}
		query.Set("priority", string(priority))
		path += "?" + query.Encode()
	}

	var payload questionsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func (c *HTTPClient) SubmitQuiz(ctx context.Context, sectionID string, priority content.Priority, responses []quiz.SubmittedResponse) (Submission, error) {
	if strings.TrimSpace(sectionID) == "" {
		return Submission{}, errors.New("section id is required")
	}
	if responses == nil {
		responses = []quiz.SubmittedResponse{}
	}

	request := submitRequest{Priority: string(priority), Responses: responses}
	var payload Submission
	path := "/api/quizzes/" + url.PathEscape(sectionID) + "/results"
	if err := c.doJSON(ctx, http.MethodPost, path, request, &payload); err != nil {
		return Submission{}, err
	}
	return payload, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string, itemType content.ItemType, limit int) ([]search.Result, error) {
	values := url.Values{}
	values.Set("q", query)
	if itemType != "" {
		values.Set("type", string(itemType))
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}

	var payload searchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/search?"+values.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *HTTPClient) Progress(ctx context.Context) (ProgressSummary, error) {
	var payload ProgressSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/progress", nil, &payload); err != nil {
		return ProgressSummary{}, err
	}
	return payload, nil
}

func (c *HTTPClient) ResetProgress(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/progress", nil, nil)
}
