package quiz

import (
	"testing"

	"interview-prep/internal/content"
)

func sampleContent() []content.QuizQuestion {
	return []content.QuizQuestion{
		{
			ID:           "q1",
			Prompt:       "Capital of France?",
			Options:      []string{"Berlin", "Paris"},
			CorrectIndex: 1,
			Explanation:  "Paris is the capital.",
			Priority:     content.PriorityMustKnow,
		},
		{
			ID:           "q2",
			Prompt:       "2+2?",
			Options:      []string{"4", "3", "5"},
			CorrectIndex: 0,
			Explanation:  "Arithmetic.",
			Priority:     content.PriorityGoodToKnow,
		},
	}
}

func TestBuildQuestionsAssignsLettersInOrder(t *testing.T) {
	questions := BuildQuestions(sampleContent())
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	second := questions[1]
	if second.QuestionID != "q2" || second.Question != "2+2?" {
		t.Fatalf("unexpected question: %+v", second)
	}
	wantLetters := []string{"A", "B", "C"}
	for idx, option := range second.Options {
		if option.Letter != wantLetters[idx] {
			t.Fatalf("option %d letter = %q, want %q", idx, option.Letter, wantLetters[idx])
		}
	}
	if second.CorrectLetter() != "A" {
		t.Fatalf("correct letter = %q, want A", second.CorrectLetter())
	}
	if second.Priority != "good-to-know" {
		t.Fatalf("priority = %q", second.Priority)
	}
}

func TestFilterByPriority(t *testing.T) {
	questions := BuildQuestions(sampleContent())

	if got := FilterByPriority(questions, ""); len(got) != 2 {
		t.Fatalf("empty priority should keep all, got %d", len(got))
	}
	got := FilterByPriority(questions, content.PriorityMustKnow)
	if len(got) != 1 || got[0].QuestionID != "q1" {
		t.Fatalf("unexpected must-know filter result: %+v", got)
	}
}

func TestBankEvaluateResponsesStatuses(t *testing.T) {
	bank := NewBank()
	bank.AddQuestions(BuildQuestions(sampleContent()))

	results := bank.EvaluateResponses([]SubmittedResponse{
		{QuestionID: "q1", Answer: "B"},
		{QuestionID: "q1", Answer: "a"},
		{QuestionID: "q1", Answer: "Z"},
		{QuestionID: "missing", Answer: "A"},
		{QuestionID: "q1", Answer: "AB"},
		{QuestionID: "q1", Answer: "  "},
	})

	want := []string{
		StatusCorrect,
		StatusIncorrect,
		StatusInvalidLetter,
		StatusInvalidQuestion,
		StatusInvalidLetter,
		StatusUnanswered,
	}

	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for idx := range want {
		if results[idx].Status != want[idx] {
			t.Fatalf("result %d status = %q, want %q", idx, results[idx].Status, want[idx])
		}
	}
	if results[1].CorrectLetter != "B" || results[1].Explanation == "" {
		t.Fatalf("expected review data on incorrect answer: %+v", results[1])
	}
	if results[3].CorrectLetter != "" {
		t.Fatalf("unknown question must not leak an answer: %+v", results[3])
	}
}

func TestNormalizeLetter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim and uppercase", input: " a ", want: "A"},
		{name: "already uppercase", input: "B", want: "B"},
		{name: "empty", input: "", want: ""},
		{name: "multiple chars", input: "AB", want: ""},
		{name: "whitespace", input: "   ", want: ""},
		{name: "digit", input: "1", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLetter(tc.input); got != tc.want {
				t.Fatalf("NormalizeLetter(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
