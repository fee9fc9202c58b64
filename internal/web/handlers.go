package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
	"interview-prep/internal/visitor"
)

// loadProgress never fails the page: a broken store renders as empty progress.
func (s *Site) loadProgress(r *http.Request) progress.Progress {
	visitorID := visitor.FromContext(r.Context())
	if visitorID == "" {
		return progress.Empty(visitorID)
	}
	loaded, err := s.progress.Get(r.Context(), visitorID)
	if err != nil {
		s.logger.Warn("load progress", zap.String("visitor_id", visitorID), zap.Error(err))
		return progress.Empty(visitorID)
	}
	return loaded
}

func (s *Site) layout(r *http.Request, title string) layoutData {
	return s.layoutWith(r, title, s.loadProgress(r))
}

func (s *Site) layoutWith(r *http.Request, title string, p progress.Progress) layoutData {
	_, err := r.Cookie(BannerCookieName)
	return layoutData{
		Title:      title,
		Theme:      p.Theme,
		Themes:     []progress.Theme{progress.ThemeLight, progress.ThemeDark, progress.ThemeSystem},
		ShowBanner: errors.Is(err, http.ErrNoCookie),
		Query:      r.URL.Query().Get("q"),
		Path:       r.URL.RequestURI(),
		Categories: content.Categories(),
	}
}

func (s *Site) handleHome(w http.ResponseWriter, r *http.Request) {
	p := s.loadProgress(r)

	groups := make([]categoryGroup, 0, len(content.Categories()))
	for _, category := range content.Categories() {
		group := categoryGroup{Category: category, Label: category.Label()}
		for _, section := range s.catalog.SectionsByCategory(category) {
			group.Sections = append(group.Sections, sectionCard{
				Section:    section,
				TopicsDone: countTopicsDone(p, section),
				Result:     resultFor(p, section.ID),
			})
		}
		groups = append(groups, group)
	}

	s.render(w, http.StatusOK, "home", homePage{
		layoutData: s.layoutWith(r, "Interview Prep", p),
		Groups:     groups,
		Stats:      p.Stats(),
		Content:    s.catalog.Stats(),
	})
}

func (s *Site) handleSection(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	p := s.loadProgress(r)

	topics := make([]topicView, 0, len(section.Topics))
	for _, topic := range section.Topics {
		topics = append(topics, topicView{
			Topic:    topic,
			Done:     p.TopicCompleted(section.ID, topic.ID),
			MustKnow: topic.Priority == content.PriorityMustKnow,
		})
	}

	s.render(w, http.StatusOK, "section", sectionPage{
		layoutData: s.layoutWith(r, section.Title, p),
		Section:    section,
		Topics:     topics,
		TopicsDone: countTopicsDone(p, section),
		LastResult: resultFor(p, section.ID),
	})
}

func (s *Site) handleToggleTopic(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	topic, found := section.Topic(mux.Vars(r)["topic_id"])
	if !found {
		s.renderError(w, r, http.StatusNotFound, "Topic not found")
		return
	}

	completed := r.FormValue("completed") == "1"
	if err := s.progress.SetTopicCompleted(r.Context(), visitor.FromContext(r.Context()), section.ID, topic.ID, completed); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, section.Link()+"#"+topic.ID, http.StatusSeeOther)
}

func (s *Site) handleQuiz(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	p := s.loadProgress(r)

	view, found := s.quizzes.Session(visitor.FromContext(r.Context()), section.ID)
	if !found {
		view = quiz.SessionView{SectionID: section.ID, Phase: quiz.PhaseIdle, Total: len(section.Quiz)}
	}

	s.render(w, http.StatusOK, "quiz", quizPage{
		layoutData:    s.layoutWith(r, section.Title+" Quiz", p),
		Section:       section,
		View:          view,
		LastResult:    resultFor(p, section.ID),
		MustKnowCount: section.MustKnowCount(),
		Notice:        r.URL.Query().Get("notice"),
	})
}

func (s *Site) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	priority, err := content.ParsePriority(r.FormValue("priority"))
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	_, err = s.quizzes.StartSession(visitor.FromContext(r.Context()), section.ID, priority)
	s.afterQuizStep(w, r, section, err)
}

func (s *Site) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	option, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		s.redirectQuiz(w, r, section, "Pick an option first.")
		return
	}

	visitorID := visitor.FromContext(r.Context())
	if _, err := s.quizzes.Answer(visitorID, section.ID, option); err != nil {
		s.afterQuizStep(w, r, section, err)
		return
	}

	switch r.FormValue("then") {
	case "next":
		_, err = s.quizzes.Next(visitorID, section.ID)
	case "finish":
		_, err = s.quizzes.Finish(r.Context(), visitorID, section.ID)
	}
	s.afterQuizStep(w, r, section, err)
}

func (s *Site) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	_, err := s.quizzes.Next(visitor.FromContext(r.Context()), section.ID)
	s.afterQuizStep(w, r, section, err)
}

func (s *Site) handleQuizPrev(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	_, err := s.quizzes.Prev(visitor.FromContext(r.Context()), section.ID)
	s.afterQuizStep(w, r, section, err)
}

func (s *Site) handleQuizFinish(w http.ResponseWriter, r *http.Request) {
	section, ok := s.section(w, r)
	if !ok {
		return
	}
	_, err := s.quizzes.Finish(r.Context(), visitor.FromContext(r.Context()), section.ID)
	s.afterQuizStep(w, r, section, err)
}

// afterQuizStep redirects back to the quiz page. State machine refusals are
// shown as a notice there instead of an error page.
func (s *Site) afterQuizStep(w http.ResponseWriter, r *http.Request, section content.Section, err error) {
	switch {
	case err == nil:
		s.redirectQuiz(w, r, section, "")
	case errors.Is(err, quiz.ErrNotAnswered):
		s.redirectQuiz(w, r, section, "Answer this question before moving on.")
	case errors.Is(err, quiz.ErrInvalidOption):
		s.redirectQuiz(w, r, section, "That option does not exist.")
	case errors.Is(err, quiz.ErrEmptyQuiz):
		s.redirectQuiz(w, r, section, "There are no questions to practice here yet.")
	case errors.Is(err, quiz.ErrInvalidTransition):
		s.redirectQuiz(w, r, section, "")
	default:
		s.fail(w, r, err)
	}
}

func (s *Site) redirectQuiz(w http.ResponseWriter, r *http.Request, section content.Section, notice string) {
	target := section.QuizLink()
	if notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Site) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	itemType, err := content.ParseItemType(r.URL.Query().Get("type"))
	if err != nil {
		itemType = ""
	}

	var results []search.Result
	searched := strings.TrimSpace(query) != ""
	if searched {
		results = s.index.Search(query, search.Options{Type: itemType})
	}

	s.render(w, http.StatusOK, "search", searchPage{
		layoutData: s.layout(r, "Search"),
		Types:      content.ItemTypes(),
		Type:       itemType,
		Results:    results,
		Searched:   searched,
	})
}

func (s *Site) handleProgress(w http.ResponseWriter, r *http.Request) {
	p := s.loadProgress(r)

	rows := make([]progressRow, 0)
	for _, section := range s.catalog.Sections() {
		rows = append(rows, progressRow{
			Section:     section,
			Result:      resultFor(p, section.ID),
			TopicsDone:  countTopicsDone(p, section),
			TopicsTotal: len(section.Topics),
		})
	}

	s.render(w, http.StatusOK, "progress", progressPage{
		layoutData: s.layoutWith(r, "Your progress", p),
		Stats:      p.Stats(),
		Rows:       rows,
		UpdatedAt:  p.UpdatedAt,
	})
}

func (s *Site) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	visitorID := visitor.FromContext(r.Context())
	if err := s.progress.Reset(r.Context(), visitorID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.quizzes.ResetVisitor(visitorID)
	http.Redirect(w, r, "/progress", http.StatusSeeOther)
}

func (s *Site) handleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := progress.ParseTheme(r.FormValue("theme"))
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.progress.SetTheme(r.Context(), visitor.FromContext(r.Context()), theme); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, safeReturnPath(r.FormValue("return_to")), http.StatusSeeOther)
}

func (s *Site) handleDismissBanner(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     BannerCookieName,
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeReturnPath(r.FormValue("return_to")), http.StatusSeeOther)
}

func (s *Site) section(w http.ResponseWriter, r *http.Request) (content.Section, bool) {
	section, err := s.catalog.Section(mux.Vars(r)["section_id"])
	if err != nil {
		if errors.Is(err, content.ErrSectionNotFound) {
			s.renderError(w, r, http.StatusNotFound, "Section not found")
			return content.Section{}, false
		}
		s.fail(w, r, err)
		return content.Section{}, false
	}
	return section, true
}

func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, progress.ErrInvalidVisitor) || errors.Is(err, quiz.ErrMissingVisitor) {
		s.renderError(w, r, http.StatusBadRequest, "Cookies are required to save progress.")
		return
	}
	s.logger.Error("page request failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
}

// safeReturnPath only allows local absolute paths.
func safeReturnPath(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}
