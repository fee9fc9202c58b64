package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed data/*.json
var dataFS embed.FS

type Catalog struct {
	sections []Section
	byID     map[string]int
	items    []SearchItem
}

type Stats struct {
	Sections  int `json:"sections"`
	Topics    int `json:"topics"`
	Questions int `json:"questions"`
}

// Default loads the catalog compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every *.json file at the root of fsys as one section.
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no section files found")
	}
	sort.Strings(names)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		var section Section
		if err := json.Unmarshal(raw, &section); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		if section.ID == "" {
			section.ID = strings.TrimSuffix(path.Base(name), ".json")
		}
		sections = append(sections, section)
	}

	return New(sections)
}

// New validates sections and derives the search list.
func New(sections []Section) (*Catalog, error) {
	if err := validate(sections); err != nil {
		return nil, err
	}

	ordered := make([]Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})

	byID := make(map[string]int, len(ordered))
	for idx, section := range ordered {
		byID[section.ID] = idx
	}

	return &Catalog{
		sections: ordered,
		byID:     byID,
		items:    buildSearchItems(ordered),
	}, nil
}

func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

func (c *Catalog) SectionsByCategory(category Category) []Section {
	out := make([]Section, 0)
	for _, section := range c.sections {
		if section.Category == category {
			out = append(out, section)
		}
	}
	return out
}

func (c *Catalog) Section(id string) (Section, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Section{}, ErrSectionNotFound
	}
	return c.sections[idx], nil
}

func (c *Catalog) Quiz(sectionID string) ([]QuizQuestion, error) {
	section, err := c.Section(sectionID)
	if err != nil {
		return nil, err
	}
	return section.Quiz, nil
}

func (c *Catalog) SearchItems() []SearchItem {
	out := make([]SearchItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Stats() Stats {
	var stats Stats
	stats.Sections = len(c.sections)
	for _, section := range c.sections {
		stats.Topics += len(section.Topics)
		stats.Questions += len(section.Quiz)
	}
	return stats
}

func validate(sections []Section) error {
	sectionIDs := make(map[string]struct{}, len(sections))
	questionIDs := make(map[string]string)

	for _, section := range sections {
		if strings.TrimSpace(section.ID) == "" {
			return fmt.Errorf("section with title %q has no id", section.Title)
		}
		if _, dup := sectionIDs[section.ID]; dup {
			return fmt.Errorf("duplicate section id %q", section.ID)
		}
		sectionIDs[section.ID] = struct{}{}

		if strings.TrimSpace(section.Title) == "" {
			return fmt.Errorf("section %s: title is required", section.ID)
		}
		if !section.Category.Valid() {
			return fmt.Errorf("section %s: unknown category %q", section.ID, section.Category)
		}

		topicIDs := make(map[string]struct{}, len(section.Topics))
		for _, topic := range section.Topics {
			if strings.TrimSpace(topic.ID) == "" {
				return fmt.Errorf("section %s: topic %q has no id", section.ID, topic.Title)
			}
			if _, dup := topicIDs[topic.ID]; dup {
				return fmt.Errorf("section %s: duplicate topic id %q", section.ID, topic.ID)
			}
			topicIDs[topic.ID] = struct{}{}
			if topic.Priority != "" && !topic.Priority.Valid() {
				return fmt.Errorf("section %s topic %s: unknown priority %q", section.ID, topic.ID, topic.Priority)
			}
		}

		for _, question := range section.Quiz {
			if strings.TrimSpace(question.ID) == "" {
				return fmt.Errorf("section %s: question %q has no id", section.ID, question.Prompt)
			}
			if owner, dup := questionIDs[question.ID]; dup {
				return fmt.Errorf("section %s: question id %q already used by %s", section.ID, question.ID, owner)
			}
			questionIDs[question.ID] = section.ID

			if len(question.Options) < 2 {
				return fmt.Errorf("question %s: at least two options required", question.ID)
			}
			if len(question.Options) > 26 {
				return fmt.Errorf("question %s: too many options", question.ID)
			}
			if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
				return fmt.Errorf("question %s: correct_index %d out of range", question.ID, question.CorrectIndex)
			}
			if !question.Priority.Valid() {
				return fmt.Errorf("question %s: unknown priority %q", question.ID, question.Priority)
			}
		}
	}

	return nil
}

func buildSearchItems(sections []Section) []SearchItem {
	items := make([]SearchItem, 0)
	for _, section := range sections {
		items = append(items, SearchItem{
			ID:          "page:" + section.ID,
			Title:       section.Title,
			Description: section.Description,
			Keywords:    section.Keywords,
			Category:    section.Category,
			Type:        TypePage,
			Link:        section.Link(),
		})

		for _, topic := range section.Topics {
			items = append(items, SearchItem{
				ID:          "topic:" + section.ID + "/" + topic.ID,
				Title:       topic.Title,
				Description: topic.Summary,
				Keywords:    topic.Keywords,
				Category:    section.Category,
				Type:        TypeTopic,
				Link:        section.Link(),
				Anchor:      topic.ID,
			})
		}

		if len(section.Quiz) == 0 {
			continue
		}
		items = append(items, SearchItem{
			ID:          "quiz:" + section.ID,
			Title:       section.Title + " Quiz",
			Description: fmt.Sprintf("%d questions on %s", len(section.Quiz), strings.ToLower(section.Title)),
			Keywords:    append([]string{"quiz", "practice"}, section.Keywords...),
			Category:    section.Category,
			Type:        TypeQuiz,
			Link:        section.QuizLink(),
		})

		for _, question := range section.Quiz {
			if question.Priority != PriorityMustKnow {
				continue
			}
			items = append(items, SearchItem{
				ID:          "question:" + question.ID,
				Title:       question.Prompt,
				Description: question.Explanation,
				Category:    section.Category,
				Type:        TypeQuestion,
				Link:        section.QuizLink(),
			})
		}
	}
	return items
}
