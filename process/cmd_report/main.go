package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"picklist/process/report"
)

func main() {
	var (
		dir   string
		month string
		list  bool
	)
	cmd := &cobra.Command{
		Use:   "cmd_report",
		Short: "Summarize picklist spreadsheets written by cmd_batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.Build(dir, month)
			if err != nil {
				return err
			}
			scope := "all time"
			if month != "" {
				scope = month + " (UTC)"
			}
			color.New(color.FgCyan).Printf("Report for %s, %s:\n", dir, scope)
			fmt.Printf("  files=%d lines=%d ordered=%d picked=%d checked=%d fill=%.1f%%\n",
				len(rep.Files), rep.Lines, rep.Ordered, rep.Picked, rep.Checks, rep.FillRate()*100)
			if list {
				for _, f := range rep.Files {
					fmt.Printf("%s|%d|%d|%d|%d|%s\n", f.Name, f.Lines, f.Ordered, f.Picked, f.Checks, f.ModTime.Format(time.RFC3339))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "inbox/out", "directory with exported spreadsheets")
	cmd.Flags().StringVar(&month, "month", "", "only files modified in this month (YYYY-MM)")
	cmd.Flags().BoolVar(&list, "list", false, "list every file")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
