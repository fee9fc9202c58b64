package quiz

import (
	"strings"
	"sync"

	"interview-prep/internal/content"
)

const (
	StatusCorrect         = "correct"
	StatusIncorrect       = "incorrect"
	StatusInvalidQuestion = "invalid_question"
	StatusInvalidLetter   = "invalid_letter"
	StatusUnanswered      = "unanswered"
)

type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type Question struct {
	PublicQuestion
	CorrectIndex int
	Explanation  string
}

type PublicQuestion struct {
	QuestionID string   `json:"question_id"`
	Question   string   `json:"question"`
	Options    []Option `json:"options"`
	Priority   string   `json:"priority"`
}

type SubmittedResponse struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// ResponseResult carries the review data shown once a quiz is submitted.
type ResponseResult struct {
	QuestionID    string `json:"question_id"`
	Status        string `json:"status"`
	Answer        string `json:"answer,omitempty"`
	CorrectLetter string `json:"correct_letter,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

type Bank struct {
	questions sync.Map
}

func NewBank() *Bank {
	return &Bank{}
}

func BuildQuestions(items []content.QuizQuestion) []Question {
	questions := make([]Question, 0, len(items))
	for _, item := range items {
		questions = append(questions, buildQuestion(item))
	}
	return questions
}

// FilterByPriority keeps every question when priority is empty.
func FilterByPriority(questions []Question, priority content.Priority) []Question {
	if priority == "" {
		return questions
	}
	filtered := make([]Question, 0, len(questions))
	for _, question := range questions {
		if question.Priority == string(priority) {
			filtered = append(filtered, question)
		}
	}
	return filtered
}

func (b *Bank) AddQuestions(questions []Question) {
	for _, question := range questions {
		b.questions.Store(question.QuestionID, question)
	}
}

func (b *Bank) Question(questionID string) (Question, bool) {
	stored, ok := b.questions.Load(questionID)
	if !ok {
		return Question{}, false
	}
	question, ok := stored.(Question)
	return question, ok
}

func (b *Bank) EvaluateResponses(responses []SubmittedResponse) []ResponseResult {
	results := make([]ResponseResult, 0, len(responses))
	for _, response := range responses {
		question, ok := b.Question(response.QuestionID)
		if !ok {
			results = append(results, ResponseResult{
				QuestionID: response.QuestionID,
				Status:     StatusInvalidQuestion,
			})
			continue
		}
		result, _ := evaluate(question, response.Answer)
		results = append(results, result)
	}
	return results
}

func ToPublicQuestions(questions []Question) []PublicQuestion {
	public := make([]PublicQuestion, 0, len(questions))
	for _, question := range questions {
		public = append(public, question.PublicQuestion)
	}
	return public
}

func (q Question) CorrectLetter() string {
	return LetterForIndex(q.CorrectIndex)
}

func NormalizeLetter(answer string) string {
	letter := strings.ToUpper(strings.TrimSpace(answer))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return ""
	}
	return letter
}

func LetterForIndex(index int) string {
	if index < 0 || index >= 26 {
		return ""
	}
	return string(rune('A' + index))
}

// evaluate returns the chosen option index, or -1 when the answer is not usable.
func evaluate(question Question, answer string) (ResponseResult, int) {
	result := ResponseResult{
		QuestionID:    question.QuestionID,
		CorrectLetter: question.CorrectLetter(),
		Explanation:   question.Explanation,
	}

	if strings.TrimSpace(answer) == "" {
		result.Status = StatusUnanswered
		return result, -1
	}

	letter := NormalizeLetter(answer)
	if letter == "" {
		result.Status = StatusInvalidLetter
		return result, -1
	}

	answerIndex := int(letter[0] - 'A')
	if answerIndex >= len(question.Options) {
		result.Status = StatusInvalidLetter
		return result, -1
	}

	result.Answer = letter
	result.Status = StatusIncorrect
	if answerIndex == question.CorrectIndex {
		result.Status = StatusCorrect
	}
	return result, answerIndex
}

func buildQuestion(item content.QuizQuestion) Question {
	options := make([]Option, len(item.Options))
	for idx, text := range item.Options {
		options[idx] = Option{
			Letter: LetterForIndex(idx),
			Text:   text,
		}
	}

	return Question{
		PublicQuestion: PublicQuestion{
			QuestionID: item.ID,
			Question:   item.Prompt,
			Options:    options,
			Priority:   string(item.Priority),
		},
		CorrectIndex: item.CorrectIndex,
		Explanation:  item.Explanation,
	}
}
