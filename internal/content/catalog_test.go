package content

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

const validSection = `{
  "id": "alpha",
  "title": "Alpha",
  "description": "First section",
  "category": "behavioral",
  "order": 2,
  "keywords": ["alpha"],
  "topics": [
    {"id": "t1", "title": "Topic One", "summary": "One", "priority": "must-know"}
  ],
  "quiz": [
    {"id": "a-q1", "prompt": "Pick A", "options": ["A", "B"], "correct_index": 0, "explanation": "A", "priority": "must-know"},
    {"id": "a-q2", "prompt": "Pick B", "options": ["A", "B"], "correct_index": 1, "explanation": "B", "priority": "good-to-know"}
  ]
}`

const emptySection = `{
  "id": "beta",
  "title": "Beta",
  "category": "system-design",
  "order": 1
}`

func TestLoadOrdersSectionsAndBuildsSearchItems(t *testing.T) {
	fsys := fstest.MapFS{
		"alpha.json": {Data: []byte(validSection)},
		"beta.json":  {Data: []byte(emptySection)},
		"notes.txt":  {Data: []byte("ignored")},
	}

	catalog, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sections := catalog.Sections()
	if len(sections) != 2 || sections[0].ID != "beta" || sections[1].ID != "alpha" {
		t.Fatalf("unexpected section order: %+v", sections)
	}

	items := catalog.SearchItems()
	wantIDs := []string{"page:beta", "page:alpha", "topic:alpha/t1", "quiz:alpha", "question:a-q1"}
	if len(items) != len(wantIDs) {
		t.Fatalf("expected %d search items, got %d: %+v", len(wantIDs), len(items), items)
	}
	for idx, want := range wantIDs {
		if items[idx].ID != want {
			t.Fatalf("item %d id = %q, want %q", idx, items[idx].ID, want)
		}
	}

	topic := items[2]
	if topic.Href() != "/sections/alpha#t1" {
		t.Fatalf("topic href = %q", topic.Href())
	}
	if items[0].Href() != "/sections/beta" {
		t.Fatalf("page href = %q", items[0].Href())
	}

	stats := catalog.Stats()
	if stats.Sections != 2 || stats.Topics != 1 || stats.Questions != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestLoadRejectsInvalidSections(t *testing.T) {
	tests := []struct {
		name    string
		section string
		wantErr string
	}{
		{
			name:    "correct index out of range",
			section: `{"id":"s","title":"S","category":"behavioral","quiz":[{"id":"q","prompt":"?","options":["a","b"],"correct_index":2,"priority":"must-know"}]}`,
			wantErr: "out of range",
		},
		{
			name:    "unknown priority",
			section: `{"id":"s","title":"S","category":"behavioral","quiz":[{"id":"q","prompt":"?","options":["a","b"],"correct_index":0,"priority":"nice"}]}`,
			wantErr: "unknown priority",
		},
		{
			name:    "single option",
			section: `{"id":"s","title":"S","category":"behavioral","quiz":[{"id":"q","prompt":"?","options":["a"],"correct_index":0,"priority":"must-know"}]}`,
			wantErr: "at least two options",
		},
		{
			name:    "unknown category",
			section: `{"id":"s","title":"S","category":"trivia"}`,
			wantErr: "unknown category",
		},
		{
			name:    "duplicate topic",
			section: `{"id":"s","title":"S","category":"behavioral","topics":[{"id":"t","title":"T"},{"id":"t","title":"T2"}]}`,
			wantErr: "duplicate topic",
		},
		{
			name:    "missing title",
			section: `{"id":"s","category":"behavioral"}`,
			wantErr: "title is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{"s.json": {Data: []byte(tc.section)}})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Load error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadRejectsDuplicateQuestionIDsAcrossSections(t *testing.T) {
	other := strings.Replace(validSection, `"id": "alpha"`, `"id": "gamma"`, 1)
	_, err := Load(fstest.MapFS{
		"alpha.json": {Data: []byte(validSection)},
		"gamma.json": {Data: []byte(other)},
	})
	if err == nil || !strings.Contains(err.Error(), "already used by") {
		t.Fatalf("expected duplicate question id error, got %v", err)
	}
}

func TestLoadUsesFileNameWhenIDMissing(t *testing.T) {
	catalog, err := Load(fstest.MapFS{
		"delta.json": {Data: []byte(`{"title":"Delta","category":"coding-patterns"}`)},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := catalog.Section("delta"); err != nil {
		t.Fatalf("expected section delta, got %v", err)
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	if _, err := Load(fstest.MapFS{}); err == nil {
		t.Fatalf("expected error for empty content directory")
	}
}

func TestCatalogSectionLookups(t *testing.T) {
	catalog, err := Load(fstest.MapFS{"alpha.json": {Data: []byte(validSection)}})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := catalog.Section("missing"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	questions, err := catalog.Quiz(" alpha ")
	if err != nil || len(questions) != 2 {
		t.Fatalf("Quiz(alpha) = (%d, %v)", len(questions), err)
	}
	if got := catalog.SectionsByCategory(CategoryBehavioral); len(got) != 1 {
		t.Fatalf("expected one behavioral section, got %d", len(got))
	}
	if got := catalog.SectionsByCategory(CategoryCodingPatterns); len(got) != 0 {
		t.Fatalf("expected no coding-patterns sections, got %d", len(got))
	}
}

func TestDefaultCatalogLoads(t *testing.T) {
	catalog, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	stats := catalog.Stats()
	if stats.Sections == 0 || stats.Questions == 0 {
		t.Fatalf("embedded catalog looks empty: %+v", stats)
	}
	for _, category := range Categories() {
		if len(catalog.SectionsByCategory(category)) == 0 {
			t.Fatalf("no sections for category %s", category)
		}
	}
}

func TestParsePriorityAndItemType(t *testing.T) {
	if p, err := ParsePriority(" Must-Know "); err != nil || p != PriorityMustKnow {
		t.Fatalf("ParsePriority = (%q, %v)", p, err)
	}
	if p, err := ParsePriority(""); err != nil || p != "" {
		t.Fatalf("ParsePriority(empty) = (%q, %v)", p, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
	if c, err := ParseCategory(" System-Design "); err != nil || c != CategorySystemDesign {
		t.Fatalf("ParseCategory = (%q, %v)", c, err)
	}
	if _, err := ParseCategory("frontend"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if typ, err := ParseItemType("TOPIC"); err != nil || typ != TypeTopic {
		t.Fatalf("ParseItemType = (%q, %v)", typ, err)
	}
	if _, err := ParseItemType("video"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
