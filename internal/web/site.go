package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
)

// BannerCookieName holds the dismissal flag. It is a session cookie and is
// never written to the progress store.
const BannerCookieName = "prep_banner_dismissed"

var ErrMissingDependency = errors.New("site needs a catalog, quiz, progress and search service")

var pageNames = []string{"home", "section", "quiz", "search", "progress", "error"}

// Site renders the HTML pages.
type Site struct {
	catalog  *content.Catalog
	quizzes  *quiz.Service
	progress *progress.Service
	index    *search.Index
	logger   *zap.Logger

	pages map[string]*template.Template
}

func NewSite(catalog *content.Catalog, quizzes *quiz.Service, progressService *progress.Service, index *search.Index, logger *zap.Logger) (*Site, error) {
	if catalog == nil || quizzes == nil || progressService == nil || index == nil {
		return nil, ErrMissingDependency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(
			contentFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Site{
		catalog:  catalog,
		quizzes:  quizzes,
		progress: progressService,
		index:    index,
		logger:   logger,
		pages:    pages,
	}, nil
}

// Register mounts the pages, form endpoints and static assets on r.
func (s *Site) Register(r *mux.Router) {
	static, err := fs.Sub(contentFS, "static")
	if err == nil {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/reset", s.handleResetProgress).Methods(http.MethodPost)
	r.HandleFunc("/theme", s.handleTheme).Methods(http.MethodPost)
	r.HandleFunc("/banner/dismiss", s.handleDismissBanner).Methods(http.MethodPost)

	r.HandleFunc("/sections/{section_id}", s.handleSection).Methods(http.MethodGet)
	r.HandleFunc("/sections/{section_id}/topics/{topic_id}", s.handleToggleTopic).Methods(http.MethodPost)
	r.HandleFunc("/sections/{section_id}/quiz", s.handleQuiz).Methods(http.MethodGet)
	r.HandleFunc("/sections/{section_id}/quiz/start", s.handleQuizStart).Methods(http.MethodPost)
	r.HandleFunc("/sections/{section_id}/quiz/answer", s.handleQuizAnswer).Methods(http.MethodPost)
	r.HandleFunc("/sections/{section_id}/quiz/next", s.handleQuizNext).Methods(http.MethodPost)
	r.HandleFunc("/sections/{section_id}/quiz/prev", s.handleQuizPrev).Methods(http.MethodPost)
	r.HandleFunc("/sections/{section_id}/quiz/finish", s.handleQuizFinish).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.renderError(w, req, http.StatusNotFound, "Page not found")
	})
}

// NewRouter returns a router serving only the site.
func (s *Site) NewRouter() *mux.Router {
	r := mux.NewRouter()
	s.Register(r)
	return r
}

func (s *Site) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Error("unknown page template", zap.String("page", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// A template error must not leave half a page on the wire.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, status, "error", errorPage{
		layoutData: s.layout(r, http.StatusText(status)),
		Status:     status,
		Message:    message,
	})
}

var templateFuncs = template.FuncMap{
	"letter": quiz.LetterForIndex,
	"inc": func(i int) int {
		return i + 1
	},
	"percent": func(result *quiz.Result) int {
		if result == nil {
			return 0
		}
		return result.Percent()
	},
}
