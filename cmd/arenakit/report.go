package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/sugawarayuuta/sonnet"
)

var reportJSON bool

func init() {
	cmd := newReportCmd()
	cmd.Flags().BoolVar(&reportJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(cmd)
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the configured budgets and an empty manager's report",
		Long: `The report command creates a manager from the budget flags and prints
its arena table without running any workload. It is a quick way to check
what a configuration reserves.

Example:
  arenakit report --perm-budget 4194304 --lang de
  arenakit report --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.OutOrStdout())
		},
	}
}

type reportArena struct {
	Arena     string `json:"arena"`
	Count     int    `json:"count"`
	Bytes     int    `json:"bytes"`
	HighWater int    `json:"high_water"`
	Capacity  int    `json:"capacity"`
}

type reportJSONDoc struct {
	PermanentFallback bool          `json:"permanent_fallback"`
	TemporaryFallback bool          `json:"temporary_fallback"`
	Arenas            []reportArena `json:"arenas"`
}

func runReport(out io.Writer) (err error) {
	tag, err := reportTag()
	if err != nil {
		return err
	}
	m, err := newManager()
	if err != nil {
		return err
	}
	defer func() {
		if serr := m.Shutdown(); err == nil {
			err = serr
		}
	}()

	r := m.Report()
	if !reportJSON {
		return r.Format(out, tag)
	}

	cfg := m.Config()
	doc := reportJSONDoc{
		PermanentFallback: cfg.PermanentFallback,
		TemporaryFallback: cfg.TemporaryFallback,
	}
	for _, a := range r.Arenas {
		doc.Arenas = append(doc.Arenas, reportArena{
			Arena:     a.ID.String(),
			Count:     a.Count,
			Bytes:     a.Bytes,
			HighWater: a.HighWater,
			Capacity:  a.Capacity,
		})
	}
	buf, err := sonnet.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n", buf)
	return err
}
