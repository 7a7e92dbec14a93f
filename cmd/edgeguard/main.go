// edgeguard is the CLI for the sensor anomaly pipeline: train a model from
// a sampled corpus, score live or recorded events against it, and inspect
// the frozen schema and stored results.
//
// Usage:
//
//	edgeguard train   --input corpus.jsonl --out model.json
//	edgeguard score   --model model.json [--input samples.jsonl | --core <url>] [--db results.db]
//	edgeguard schema  --model model.json
//	edgeguard results --db results.db [-n 20]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "edgeguard",
	Short: "Anomaly detection for heterogeneous edge sensor events",
	Long: "Edgeguard builds a frozen feature schema from sampled sensor events,\n" +
		"trains an isolation forest on the encoded vectors and scores new events\n" +
		"against the same schema.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
