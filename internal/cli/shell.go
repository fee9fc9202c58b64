package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"interview-prep/internal/content"
)

type ShellConfig struct {
	// Label names where answers come from, e.g. the server URL.
	Label             string
	SearchLimit       int
	MaxInvalidAnswers int
}

// Shell runs an interactive loop over src until exit or end of input.
func Shell(ctx context.Context, in io.Reader, out io.Writer, src Source, cfg ShellConfig) error {
	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "interview-prep\nsource=%s\n\n", cfg.Label)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		var cmdErr error
		switch strings.ToLower(args[0]) {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "sections":
			category := content.Category("")
			if len(args) > 1 {
				category, cmdErr = content.ParseCategory(args[1])
				if cmdErr != nil {
					break
				}
			}
			cmdErr = ListSections(ctx, out, src, category)
		case "search":
			query, limit, err := parseSearchArgs(args[1:], searchLimit)
			if err != nil {
				fmt.Fprintf(out, "invalid search limit: %v\n", err)
				continue
			}
			if query == "" {
				fmt.Fprintln(out, "usage: search [-n limit] <query>")
				continue
			}
			cmdErr = RunSearch(ctx, out, src, query, "", limit)
		case "progress":
			if len(args) > 2 || (len(args) == 2 && strings.ToLower(args[1]) != "reset") {
				fmt.Fprintln(out, "usage: progress [reset]")
				continue
			}
			cmdErr = ShowProgress(ctx, out, src, len(args) == 2)
		case "health":
			cmdErr = ShowHealth(ctx, out, src)
		case "quiz":
			if len(args) < 2 || len(args) > 3 {
				fmt.Fprintln(out, "usage: quiz <section_id> [must-know]")
				continue
			}
			priority := content.Priority("")
			if len(args) == 3 {
				priority, cmdErr = content.ParsePriority(args[2])
				if cmdErr != nil {
					break
				}
			}
			cmdErr = runQuiz(ctx, reader, out, src, args[1], QuizOptions{
				Priority:          priority,
				MaxInvalidAnswers: cfg.MaxInvalidAnswers,
			})
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}

		if cmdErr != nil {
			fmt.Fprintf(out, "error: %v\n", DescribeClientError(cmdErr, cfg.Label))
		}
	}
}

// parseSearchArgs splits "[-n limit] words..." into a query and a limit.
func parseSearchArgs(args []string, defaultLimit int) (string, int, error) {
	limit := defaultLimit
	if len(args) >= 2 && args[0] == "-n" {
		parsed, err := parsePositiveLimit(args[1], defaultLimit)
		if err != nil {
			return "", 0, err
		}
		limit = parsed
		args = args[2:]
	}
	return strings.Join(args, " "), limit, nil
}
