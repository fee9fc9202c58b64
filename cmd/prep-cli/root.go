package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"interview-prep/internal/apiclient"
	"interview-prep/internal/cli"
	"interview-prep/internal/content"
)

const visitorTokenEnv = "PREP_VISITOR_TOKEN"

type rootOptions struct {
	server       string
	timeout      time.Duration
	visitorToken string
	tokenFile    string

	client      *apiclient.HTTPClient
	loadedToken string
}

// source returns the remote API when --server is set and the embedded
// catalog otherwise, plus a label for error messages.
func (o *rootOptions) source() (cli.Source, string, error) {
	if strings.TrimSpace(o.server) == "" {
		catalog, err := content.Default()
		if err != nil {
			return nil, "", err
		}
		return cli.NewLocalSource(catalog), "embedded catalog", nil
	}
	client := apiclient.NewHTTPClient(o.server, &http.Client{Timeout: o.timeout})
	token := strings.TrimSpace(o.visitorToken)
	if token == "" && o.tokenFile != "" {
		saved, err := apiclient.LoadVisitorToken(o.tokenFile)
		if err != nil {
			return nil, "", err
		}
		token = saved
	}
	client.SetVisitorToken(token)
	o.client = client
	o.loadedToken = token
	return client, client.BaseURL(), nil
}

// saveToken writes the visitor token the server issued during the command,
// so the next invocation reads and writes the same progress.
func (o *rootOptions) saveToken() error {
	if o.client == nil || o.tokenFile == "" {
		return nil
	}
	token := o.client.VisitorToken()
	if token == "" || token == o.loadedToken {
		return nil
	}
	if err := apiclient.SaveVisitorToken(o.tokenFile, token); err != nil {
		return err
	}
	o.loadedToken = token
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "prep-cli",
		Short:         "Browse interview prep sections and take quizzes from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return opts.saveToken()
		},
	}
	defaultTokenFile, _ := apiclient.DefaultTokenFile()
	root.PersistentFlags().StringVar(&opts.server, "server", "", "prep server base URL (embedded catalog when empty)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "HTTP timeout")
	root.PersistentFlags().StringVar(&opts.visitorToken, "visitor-token", os.Getenv(visitorTokenEnv), "visitor token sent to the server (env "+visitorTokenEnv+")")
	root.PersistentFlags().StringVar(&opts.tokenFile, "token-file", defaultTokenFile, "file that keeps the visitor token between runs (empty disables)")

	root.AddCommand(
		newSectionsCmd(opts),
		newSearchCmd(opts),
		newQuizCmd(opts),
		newShellCmd(opts),
		newProgressCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

func newSectionsCmd(opts *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List sections grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := content.ParseCategory(category)
			if err != nil {
				return err
			}
			src, label, err := opts.source()
			if err != nil {
				return err
			}
			return cli.DescribeClientError(cli.ListSections(cmd.Context(), cmd.OutOrStdout(), src, parsed), label)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "behavioral, system-design or coding-patterns")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		itemType string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search pages, topics, quizzes and questions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedType, err := content.ParseItemType(itemType)
			if err != nil {
				return err
			}
			src, label, err := opts.source()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			return cli.DescribeClientError(cli.RunSearch(cmd.Context(), cmd.OutOrStdout(), src, query, parsedType, limit), label)
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "page, topic, quiz or question")
	cmd.Flags().IntVar(&limit, "limit", cli.DefaultSearchLimit, "maximum number of results")
	return cmd
}

func newQuizCmd(opts *rootOptions) *cobra.Command {
	var (
		mustKnow   bool
		maxInvalid int
	)

	cmd := &cobra.Command{
		Use:   "quiz <section>",
		Short: "Take a section's quiz interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, label, err := opts.source()
			if err != nil {
				return err
			}
			quizOpts := cli.QuizOptions{MaxInvalidAnswers: maxInvalid}
			if mustKnow {
				quizOpts.Priority = content.PriorityMustKnow
			}
			return cli.DescribeClientError(cli.RunQuiz(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), src, args[0], quizOpts), label)
		},
	}
	cmd.Flags().BoolVar(&mustKnow, "must-know", false, "only ask must-know questions")
	cmd.Flags().IntVar(&maxInvalid, "max-invalid", cli.DefaultMaxInvalidAnswers, "invalid inputs before a question is skipped")
	return cmd
}

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt for sections, search and quizzes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, label, err := opts.source()
			if err != nil {
				return err
			}
			return cli.Shell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), src, cli.ShellConfig{Label: label})
		},
	}
}

func newProgressCmd(opts *rootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show the progress the server keeps for this terminal's visitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, label, err := opts.source()
			if err != nil {
				return err
			}
			return cli.DescribeClientError(cli.ShowProgress(cmd.Context(), cmd.OutOrStdout(), src, reset), label)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "clear all progress before showing it")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the content source and print its counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, label, err := opts.source()
			if err != nil {
				return err
			}
			return cli.DescribeClientError(cli.ShowHealth(cmd.Context(), cmd.OutOrStdout(), src), label)
		},
	}
}
