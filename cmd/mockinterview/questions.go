package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pavelanni/mockinterview/internal/model"
)

func questionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions [id]",
		Short: "Validate and list the question catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuestions,
	}
	f := cmd.Flags()
	f.StringP("catalog", "c", "", "Question catalog YAML file (default: built-in catalog)")
	f.Bool("bands", false, "Also print the scoring bands of each tier")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func runQuestions(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	b, err := loadBank(v.GetString("catalog"))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if len(args) == 1 {
		q, ok := b.Lookup(args[0])
		if !ok {
			return fmt.Errorf("question %q not found", args[0])
		}
		return printQuestion(cmd.OutOrStdout(), q, b.Bands(q.Difficulty))
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIER\tLIMIT\tCATEGORY\tKEYWORDS\tTEXT")
	for _, d := range model.Tiers {
		for _, q := range b.QuestionsForTier(d) {
			fmt.Fprintf(tw, "%s\t%s\t%ds\t%s\t%s\t%s\n",
				q.ID, q.Difficulty, q.TimeLimit, q.Category, strings.Join(q.ExpectedKeywords, ","), q.Text)
		}
	}
	if v.GetBool("bands") {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TIER\tBAND\tRANGE\tFEEDBACK")
		for _, d := range model.Tiers {
			for _, band := range b.Bands(d) {
				fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%s\n", d, band.Name, band.Min, band.Max, band.Feedback)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "catalog OK: %d questions\n", b.Len())
	return nil
}

func printQuestion(w io.Writer, q model.Question, bands []model.ScoringBand) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", q.ID)
	fmt.Fprintf(tw, "Tier\t%s\n", q.Difficulty)
	fmt.Fprintf(tw, "Category\t%s\n", q.Category)
	fmt.Fprintf(tw, "Time limit\t%ds\n", q.TimeLimit)
	fmt.Fprintf(tw, "Keywords\t%s\n", strings.Join(q.ExpectedKeywords, ", "))
	fmt.Fprintf(tw, "Text\t%s\n", q.Text)
	for _, band := range bands {
		fmt.Fprintf(tw, "Band %s\t%d-%d %s\n", band.Name, band.Min, band.Max, band.Feedback)
	}
	return tw.Flush()
}
