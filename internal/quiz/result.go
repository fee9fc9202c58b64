package quiz

import "time"

// PassThreshold is the minimum score/total ratio that counts as a pass.
const PassThreshold = 0.8

type Result struct {
	SectionID   string         `json:"section_id"`
	Score       int            `json:"score"`
	Total       int            `json:"total"`
	Passed      bool           `json:"passed"`
	Answers     map[string]int `json:"answers"`
	CompletedAt time.Time      `json:"completed_at"`
}

func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score)/float64(total) >= PassThreshold
}

// NewResult scores answers (question id -> chosen option index) against
// questions. Answers for unknown questions or out-of-range indexes are dropped.
func NewResult(sectionID string, questions []Question, answers map[string]int, completedAt time.Time) Result {
	kept := make(map[string]int, len(answers))
	score := 0
	for _, question := range questions {
		chosen, ok := answers[question.QuestionID]
		if !ok || chosen < 0 || chosen >= len(question.Options) {
			continue
		}
		kept[question.QuestionID] = chosen
		if chosen == question.CorrectIndex {
			score++
		}
	}

	return Result{
		SectionID:   sectionID,
		Score:       score,
		Total:       len(questions),
		Passed:      Passed(score, len(questions)),
		Answers:     kept,
		CompletedAt: completedAt.UTC(),
	}
}

func (r Result) Percent() int {
	if r.Total <= 0 {
		return 0
	}
	return r.Score * 100 / r.Total
}
