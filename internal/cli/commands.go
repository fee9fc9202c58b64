package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"interview-prep/internal/apiclient"
	"interview-prep/internal/content"
	"interview-prep/internal/quiz"
)

// ErrNoProgress is returned by progress commands run without a server.
var ErrNoProgress = errors.New("progress is only kept by a server; use --server")

const (
	DefaultMaxInvalidAnswers = 3
	DefaultSearchLimit       = 10
)

func ListSections(ctx context.Context, out io.Writer, src Source, category content.Category) error {
	sections, err := src.ListSections(ctx)
	if err != nil {
		return err
	}

	printed := 0
	lastCategory := content.Category("")
	for _, section := range sections {
		if category != "" && section.Category != category {
			continue
		}
		if section.Category != lastCategory {
			if printed > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s:\n", section.CategoryLabel)
			lastCategory = section.Category
		}
		fmt.Fprintf(out, "  %-24s %s (%d topics, %d questions, %d must-know)\n",
			section.ID,
			section.Title,
			section.TopicCount,
			section.QuestionCount,
			section.MustKnowCount,
		)
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(out, "No sections.")
	}
	return nil
}

func RunSearch(ctx context.Context, out io.Writer, src Source, query string, itemType content.ItemType, limit int) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("search query is required")
	}

	results, err := src.Search(ctx, query, itemType, limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(out, "No results for %q.\n", query)
		return nil
	}

	fmt.Fprintf(out, "Results for %q:\n", query)
	for idx, result := range results {
		fmt.Fprintf(out, "%d. [%s] %s  %s (score %d)\n",
			idx+1,
			result.Item.Type,
			result.Item.Title,
			result.Item.Href(),
			result.Score,
		)
	}
	return nil
}

// QuizOptions tunes one interactive quiz run.
type QuizOptions struct {
	Priority          content.Priority
	MaxInvalidAnswers int
}

// RunQuiz asks every question of a section, submits all answers at once and
// prints the per-question review followed by the score line. A question that
// gets MaxInvalidAnswers unusable inputs in a row is submitted unanswered.
func RunQuiz(ctx context.Context, in io.Reader, out io.Writer, src Source, sectionID string, opts QuizOptions) error {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	return runQuiz(ctx, reader, out, src, sectionID, opts)
}

func runQuiz(ctx context.Context, reader *bufio.Reader, out io.Writer, src Source, sectionID string, opts QuizOptions) error {
	maxInvalid := opts.MaxInvalidAnswers
	if maxInvalid <= 0 {
		maxInvalid = DefaultMaxInvalidAnswers
	}

	questions, err := src.QuizQuestions(ctx, sectionID, opts.Priority)
	if errors.Is(err, quiz.ErrQuizNotFound) || apiclient.IsNotFound(err) {
		return fmt.Errorf("%w: %s", quiz.ErrQuizNotFound, sectionID)
	}
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return quiz.ErrEmptyQuiz
	}

	responses := make([]quiz.SubmittedResponse, 0, len(questions))
	for idx, question := range questions {
		printQuestion(out, idx+1, len(questions), question)

		invalidCount := 0
		for {
			answer, valid, err := promptAnswer(reader, out, len(question.Options))
			if err != nil {
				return err
			}
			if valid {
				responses = append(responses, quiz.SubmittedResponse{QuestionID: question.QuestionID, Answer: answer})
				break
			}

			invalidCount++
			if invalidCount >= maxInvalid {
				fmt.Fprintln(out, "Skipping question after multiple invalid responses.")
				break
			}
			fmt.Fprintf(out, "Invalid input. Attempts remaining: %d\n", maxInvalid-invalidCount)
		}
	}

	submission, err := src.SubmitQuiz(ctx, sectionID, opts.Priority, responses)
	if err != nil {
		return err
	}

	byID := make(map[string]quiz.PublicQuestion, len(questions))
	for _, question := range questions {
		byID[question.QuestionID] = question
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Review:")
	for idx, item := range submission.Results {
		question := byID[item.QuestionID]
		switch item.Status {
		case quiz.StatusCorrect:
			fmt.Fprintf(out, "%d. Correct (%s) %s\n", idx+1, item.Answer, question.Question)
		case quiz.StatusUnanswered:
			fmt.Fprintf(out, "%d. Skipped, correct answer was %s. %s\n", idx+1, item.CorrectLetter, question.Question)
		default:
			fmt.Fprintf(out, "%d. Wrong (%s), correct answer was %s. %s\n", idx+1, item.Answer, item.CorrectLetter, question.Question)
		}
		if item.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", item.Explanation)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Score: %d/%d (%s)\n", submission.Score, submission.Total, passLabel(submission.Passed))
	return nil
}

func ShowHealth(ctx context.Context, out io.Writer, src Source) error {
	stats, err := src.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "ok: %d sections, %d topics, %d questions\n", stats.Sections, stats.Topics, stats.Questions)
	return nil
}

// ShowProgress prints the visitor's stats, clearing them first when reset is set.
func ShowProgress(ctx context.Context, out io.Writer, src Source, reset bool) error {
	tracked, ok := src.(ProgressSource)
	if !ok {
		return ErrNoProgress
	}

	if reset {
		if err := tracked.ResetProgress(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Progress cleared.")
	}

	summary, err := tracked.Progress(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Quizzes attempted: %d\n", summary.Stats.QuizzesAttempted)
	fmt.Fprintf(out, "Quizzes passed:    %d\n", summary.Stats.QuizzesPassed)
	fmt.Fprintf(out, "Topics completed:  %d\n", summary.Stats.TopicsCompleted)
	return nil
}
