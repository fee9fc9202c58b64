package httpapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

type methodHandlers map[string]http.HandlerFunc

// Register mounts the JSON API and /healthz on r.
func Register(r *mux.Router, api *API) {
	r.HandleFunc("/healthz", api.HandleHealth).Methods(http.MethodGet)

	sub := r.PathPrefix("/api").Subrouter()
	handle(sub, "/sections", methodHandlers{http.MethodGet: api.HandleSections})
	handle(sub, "/sections/{section_id}", methodHandlers{http.MethodGet: api.HandleSection})
	handle(sub, "/quizzes/{section_id}/questions", methodHandlers{http.MethodGet: api.HandleQuizQuestions})
	handle(sub, "/quizzes/{section_id}/results", methodHandlers{http.MethodPost: api.HandleSubmitQuiz})
	handle(sub, "/responses", methodHandlers{http.MethodPost: api.HandleResponses})
	handle(sub, "/progress", methodHandlers{
		http.MethodGet:    api.HandleGetProgress,
		http.MethodDelete: api.HandleResetProgress,
	})
	handle(sub, "/progress/theme", methodHandlers{http.MethodPut: api.HandleSetTheme})
	handle(sub, "/progress/topics/{section_id}/{topic_id}", methodHandlers{http.MethodPut: api.HandleSetTopic})
	handle(sub, "/search", methodHandlers{http.MethodGet: api.HandleSearch})

	sub.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
}

// NewRouter returns a router serving only the JSON API.
func NewRouter(api *API) *mux.Router {
	r := mux.NewRouter()
	Register(r, api)
	return r
}

// handle registers one handler per method and answers any other method on
// the same path with 405 and an Allow header.
func handle(r *mux.Router, path string, handlers methodHandlers) {
	methods := make([]string, 0, len(handlers))
	for method, handler := range handlers {
		r.HandleFunc(path, handler).Methods(method)
		methods = append(methods, method)
	}
	sort.Strings(methods)
	allowed := strings.Join(methods, ", ")

	r.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		writeMethodNotAllowed(w, allowed)
	})
}
