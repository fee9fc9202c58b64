package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
	"interview-prep/internal/visitor"
)

const defaultSearchLimit = 20

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "content catalog unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Stats: a.catalog.Stats()})
}

func (a *API) HandleSections(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "content catalog unavailable"})
		return
	}

	category, err := content.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	sections := a.catalog.Sections()
	if category != "" {
		sections = a.catalog.SectionsByCategory(category)
	}

	response := sectionsResponse{Sections: make([]sectionSummaryResponse, 0, len(sections))}
	for _, section := range sections {
		response.Sections = append(response.Sections, toSectionSummary(section))
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleSection(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "content catalog unavailable"})
		return
	}

	section, err := a.catalog.Section(mux.Vars(r)["section_id"])
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	response := sectionResponse{
		sectionSummaryResponse: toSectionSummary(section),
		Keywords:               section.Keywords,
		Topics:                 section.Topics,
	}
	if a.quizzes != nil {
		result, ok, err := a.quizzes.LastResult(r.Context(), visitor.FromContext(r.Context()), section.ID)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		if ok {
			response.LastResult = &result
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	if a.quizzes == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	priority, err := parsePriorityParam(r)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	sectionID := strings.TrimSpace(mux.Vars(r)["section_id"])
	questions, err := a.quizzes.Questions(sectionID, priority)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionsResponse{
		SectionID:     sectionID,
		Priority:      string(priority),
		QuestionCount: len(questions),
		Questions:     quiz.ToPublicQuestions(questions),
	})
}

func (a *API) HandleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if a.quizzes == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	var request submitRequest
	if err := decodeJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.Responses == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "responses is required"})
		return
	}

	priority, err := content.ParsePriority(request.Priority)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	visitorID := visitor.FromContext(r.Context())
	result, review, err := a.quizzes.Submit(r.Context(), visitorID, mux.Vars(r)["section_id"], priority, request.Responses)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		SectionID:   result.SectionID,
		Score:       result.Score,
		Total:       result.Total,
		Percent:     result.Percent(),
		Passed:      result.Passed,
		CompletedAt: result.CompletedAt,
		Saved:       visitorID != "",
		Results:     review,
	})
}

// HandleResponses checks loose answers against the question bank without
// scoring or saving a quiz attempt.
func (a *API) HandleResponses(w http.ResponseWriter, r *http.Request) {
	if a.quizzes == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "quiz service unavailable"})
		return
	}

	var request responsesRequest
	if err := decodeJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.Responses == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "responses is required"})
		return
	}

	writeJSON(w, http.StatusOK, responsesResponse{
		Results: a.quizzes.Bank().EvaluateResponses(request.Responses),
	})
}

func (a *API) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	if a.progress == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "progress service unavailable"})
		return
	}

	loaded, err := a.progress.Get(r.Context(), visitor.FromContext(r.Context()))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{Progress: loaded, Stats: loaded.Stats()})
}

func (a *API) HandleResetProgress(w http.ResponseWriter, r *http.Request) {
	if a.progress == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "progress service unavailable"})
		return
	}

	visitorID := visitor.FromContext(r.Context())
	if err := a.progress.Reset(r.Context(), visitorID); err != nil {
		a.writeServiceError(w, err)
		return
	}
	if a.quizzes != nil {
		a.quizzes.ResetVisitor(visitorID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	if a.progress == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "progress service unavailable"})
		return
	}

	var request themeRequest
	if err := decodeJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	visitorID := visitor.FromContext(r.Context())
	if err := a.progress.SetTheme(r.Context(), visitorID, progress.Theme(request.Theme)); err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.HandleGetProgress(w, r)
}

func (a *API) HandleSetTopic(w http.ResponseWriter, r *http.Request) {
	if a.progress == nil || a.catalog == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "progress service unavailable"})
		return
	}

	var request topicRequest
	if err := decodeJSON(r, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.Completed == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "completed is required"})
		return
	}

	vars := mux.Vars(r)
	section, err := a.catalog.Section(vars["section_id"])
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	topic, ok := section.Topic(vars["topic_id"])
	if !ok {
		a.writeServiceError(w, content.ErrTopicNotFound)
		return
	}

	visitorID := visitor.FromContext(r.Context())
	if err := a.progress.SetTopicCompleted(r.Context(), visitorID, section.ID, topic.ID, *request.Completed); err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.HandleGetProgress(w, r)
}

func (a *API) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if a.index == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "search unavailable"})
		return
	}

	query := r.URL.Query().Get("q")
	itemType, err := content.ParseItemType(r.URL.Query().Get("type"))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	limit, err := parseIntParam(r, "limit", defaultSearchLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	results := a.index.Search(query, search.Options{Type: itemType, Limit: limit})
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   search.Normalize(query),
		Type:    string(itemType),
		Count:   len(results),
		Results: results,
	})
}
