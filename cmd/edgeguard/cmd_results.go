package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hed1ad/edgeguard/pkg/store"
)

var (
	resultsDB string
	resultsN  int
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List recent scoring results from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(resultsDB)
		if err != nil {
			return err
		}
		defer s.Close()

		recent, err := s.Recent(resultsN)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results stored.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Observed\tDevice\tSource\tScore\tAnomaly\n")
		for _, r := range recent {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%v\n",
				r.ObservedAt.Format("2006-01-02 15:04:05"),
				r.Device,
				r.Source,
				r.Score,
				r.IsAnomaly,
			)
		}
		w.Flush()

		anomalies, err := s.CountAnomalies()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal anomalies stored: %d\n", anomalies)
		return nil
	},
}

func init() {
	resultsCmd.Flags().StringVar(&resultsDB, "db", "results.db", "SQLite results database")
	resultsCmd.Flags().IntVarP(&resultsN, "limit", "n", 20, "Number of results to list")
}
