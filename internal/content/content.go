package content

import (
	"errors"
	"strings"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrTopicNotFound   = errors.New("topic not found")
	ErrInvalidPriority = errors.New("priority must be must-know or good-to-know")
	ErrInvalidType     = errors.New("type must be one of page, topic, quiz, question")
	ErrInvalidCategory = errors.New("unknown category")
)

type Priority string

const (
	PriorityMustKnow   Priority = "must-know"
	PriorityGoodToKnow Priority = "good-to-know"
)

// ParsePriority accepts an empty string as "no filter".
func ParsePriority(value string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case "", "all":
		return "", nil
	case PriorityMustKnow:
		return PriorityMustKnow, nil
	case PriorityGoodToKnow:
		return PriorityGoodToKnow, nil
	default:
		return "", ErrInvalidPriority
	}
}

func (p Priority) Valid() bool {
	return p == PriorityMustKnow || p == PriorityGoodToKnow
}

type Category string

const (
	CategoryBehavioral     Category = "behavioral"
	CategorySystemDesign   Category = "system-design"
	CategoryCodingPatterns Category = "coding-patterns"
)

var categoryOrder = []Category{CategoryBehavioral, CategorySystemDesign, CategoryCodingPatterns}

func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory accepts an empty string as "all categories".
func ParseCategory(value string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(value)))
	if category == "" || category.Valid() {
		return category, nil
	}
	return "", ErrInvalidCategory
}

func (c Category) Valid() bool {
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryBehavioral:
		return "Behavioral"
	case CategorySystemDesign:
		return "System Design"
	case CategoryCodingPatterns:
		return "Coding Patterns"
	default:
		return string(c)
	}
}

type ItemType string

const (
	TypePage     ItemType = "page"
	TypeTopic    ItemType = "topic"
	TypeQuiz     ItemType = "quiz"
	TypeQuestion ItemType = "question"
)

func ItemTypes() []ItemType {
	return []ItemType{TypePage, TypeTopic, TypeQuiz, TypeQuestion}
}

func ParseItemType(value string) (ItemType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for _, known := range ItemTypes() {
		if ItemType(value) == known {
			return known, nil
		}
	}
	return "", ErrInvalidType
}

// QuizQuestion is immutable once the catalog is loaded.
type QuizQuestion struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Priority     Priority `json:"priority"`
}

type Topic struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Body     []string `json:"body"`
	Keywords []string `json:"keywords"`
	Priority Priority `json:"priority"`
}

type Section struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    Category       `json:"category"`
	Order       int            `json:"order"`
	Keywords    []string       `json:"keywords"`
	Topics      []Topic        `json:"topics"`
	Quiz        []QuizQuestion `json:"quiz"`
}

func (s Section) Link() string {
	return "/sections/" + s.ID
}

func (s Section) QuizLink() string {
	return "/sections/" + s.ID + "/quiz"
}

func (s Section) MustKnowCount() int {
	count := 0
	for _, question := range s.Quiz {
		if question.Priority == PriorityMustKnow {
			count++
		}
	}
	return count
}

func (s Section) Topic(topicID string) (Topic, bool) {
	for _, topic := range s.Topics {
		if topic.ID == topicID {
			return topic, true
		}
	}
	return Topic{}, false
}

// SearchItem is one entry of the static search list.
type SearchItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Category    Category `json:"category"`
	Type        ItemType `json:"type"`
	Link        string   `json:"link"`
	Anchor      string   `json:"anchor,omitempty"`
}

func (i SearchItem) Href() string {
	if i.Anchor == "" {
		return i.Link
	}
	return i.Link + "#" + i.Anchor
}
