package web

import (
	"time"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
)

type layoutData struct {
	Title      string
	Theme      progress.Theme
	Themes     []progress.Theme
	ShowBanner bool
	Query      string
	Path       string
	Categories []content.Category
}

type sectionCard struct {
	Section    content.Section
	TopicsDone int
	Result     *quiz.Result
}

type categoryGroup struct {
	Category content.Category
	Label    string
	Sections []sectionCard
}

type homePage struct {
	layoutData
	Groups  []categoryGroup
	Stats   progress.Stats
	Content content.Stats
}

type topicView struct {
	Topic    content.Topic
	Done     bool
	MustKnow bool
}

type sectionPage struct {
	layoutData
	Section    content.Section
	Topics     []topicView
	TopicsDone int
	LastResult *quiz.Result
}

type quizPage struct {
	layoutData
	Section       content.Section
	View          quiz.SessionView
	LastResult    *quiz.Result
	MustKnowCount int
	Notice        string
}

type searchPage struct {
	layoutData
	Types    []content.ItemType
	Type     content.ItemType
	Results  []search.Result
	Searched bool
}

type progressRow struct {
	Section     content.Section
	Result      *quiz.Result
	TopicsDone  int
	TopicsTotal int
}

type progressPage struct {
	layoutData
	Stats     progress.Stats
	Rows      []progressRow
	UpdatedAt time.Time
}

type errorPage struct {
	layoutData
	Status  int
	Message string
}

func countTopicsDone(p progress.Progress, section content.Section) int {
	done := 0
	for _, topic := range section.Topics {
		if p.TopicCompleted(section.ID, topic.ID) {
			done++
		}
	}
	return done
}

func resultFor(p progress.Progress, sectionID string) *quiz.Result {
	result, ok := p.QuizResults[sectionID]
	if !ok {
		return nil
	}
	return &result
}
