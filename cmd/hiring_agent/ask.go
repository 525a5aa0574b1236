package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/nlquery"
	"github.com/jonathan/hiring-pipeline/internal/observability"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var showTrace bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question about candidates and positions in plain language",
		Example: `  hiring_agent ask "How many candidates know Python?"
  hiring_agent ask --trace "Which positions are still open in Berlin?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.Join(args, " ")

			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			client, err := opts.newLLM(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			svc := nlquery.NewService(client, database, database, nlquery.Options{
				AnswerRows:  opts.cfg.Query.AnswerRows,
				PreviewRows: opts.cfg.Query.PreviewRows,
			})
			answer, err := svc.Ask(ctx, question)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), answer)
			}
			if showTrace && answer.Trace != nil {
				observability.NewPrinter(cmd.OutOrStdout()).PrintQueryTrace(answer.Trace)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer.Answer)
			return err
		},
	}
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Show the generated SQL and row count")
	return cmd
}
