package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/mockinterview/internal/dashboard"
	"github.com/pavelanni/mockinterview/internal/store"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed interviews as CSV or JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("format", "f", "csv", "Output format (csv, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("search", "", "Only candidates whose name or email contains this text")
	f.String("score", "all", "Score category (all, excellent, good, average, poor)")
	f.String("sort", "date", "Sort by (date, score, name)")
	f.String("order", "desc", "Sort order (asc, desc)")
	addCommonFlags(cmd)
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	q, err := dashboard.ParseQuery(map[string][]string{
		"search": {v.GetString("search")},
		"score":  {v.GetString("score")},
		"sort":   {v.GetString("sort")},
		"order":  {v.GetString("order")},
	})
	if err != nil {
		return err
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	list, err := db.ListCompleted()
	if err != nil {
		return fmt.Errorf("list completed interviews: %w", err)
	}
	list = dashboard.Apply(list, q)

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format := strings.ToLower(v.GetString("format")); format {
	case "csv":
		if err := dashboard.WriteCSV(w, list); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	case "json":
		data, err := json.MarshalIndent(store.BuildExport(list, time.Now()), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		// Ensure trailing newline.
		_, _ = fmt.Fprintln(w)
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", format)
	}
	return nil
}
