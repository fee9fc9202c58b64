package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
)

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrSectionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "section not found"})
	case errors.Is(err, quiz.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
	case errors.Is(err, content.ErrTopicNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "topic not found"})
	case errors.Is(err, quiz.ErrEmptyQuiz):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "quiz has no questions for this priority"})
	case errors.Is(err, quiz.ErrMissingVisitor), errors.Is(err, progress.ErrInvalidVisitor):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "visitor cookie is required"})
	case errors.Is(err, progress.ErrInvalidTheme),
		errors.Is(err, progress.ErrInvalidTopic),
		errors.Is(err, content.ErrInvalidPriority),
		errors.Is(err, content.ErrInvalidType),
		errors.Is(err, content.ErrInvalidCategory):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		a.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func toSectionSummary(section content.Section) sectionSummaryResponse {
	return sectionSummaryResponse{
		ID:            section.ID,
		Title:         section.Title,
		Description:   section.Description,
		Category:      section.Category,
		CategoryLabel: section.Category.Label(),
		Link:          section.Link(),
		TopicCount:    len(section.Topics),
		QuestionCount: len(section.Quiz),
		MustKnowCount: section.MustKnowCount(),
	}
}

func parseBoolParam(r *http.Request, key string) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return value == "1" || value == "true" || value == "yes"
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

// parsePriorityParam reads ?priority=, with ?must_know=true as a shorthand.
func parsePriorityParam(r *http.Request) (content.Priority, error) {
	if parseBoolParam(r, "must_know") {
		return content.PriorityMustKnow, nil
	}
	return content.ParsePriority(r.URL.Query().Get("priority"))
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
