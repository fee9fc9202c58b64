package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"interview-prep/internal/apiclient"
	"interview-prep/internal/quiz"
)

func promptAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (string, bool, error) {
	if optionCount < 1 {
		return "", false, nil
	}

	maxLetter := byte('A' + optionCount - 1)
	fmt.Fprintf(out, "Your answer (A-%c): ", maxLetter)

	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", false, err
	}

	answer := strings.ToUpper(strings.TrimSpace(line))
	if len(answer) != 1 {
		return "", false, nil
	}
	letter := answer[0]
	if letter < 'A' || letter > maxLetter {
		return "", false, nil
	}

	return answer, true, nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  sections [category]")
	fmt.Fprintln(out, "  search [-n limit] <query>")
	fmt.Fprintln(out, "  quiz <section_id> [must-know]")
	fmt.Fprintln(out, "  progress [reset]")
	fmt.Fprintln(out, "  health")
	fmt.Fprintln(out, "  exit")
}

func printQuestion(out io.Writer, number, total int, question quiz.PublicQuestion) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d/%d: %s\n\n", number, total, question.Question)
	for _, option := range question.Options {
		fmt.Fprintf(out, "%s. %s\n", option.Letter, option.Text)
	}
	fmt.Fprintln(out)
}

func parsePositiveLimit(value string, defaultValue int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return limit, nil
}

// DescribeClientError replaces transport failures with a message naming the server.
func DescribeClientError(err error, serverURL string) error {
	if errors.Is(err, apiclient.ErrServiceUnavailable) {
		return fmt.Errorf("prep server unavailable at %s", serverURL)
	}
	return err
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
