package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hed1ad/edgeguard/pkg/config"
	"github.com/hed1ad/edgeguard/pkg/io/coredata"
	"github.com/hed1ad/edgeguard/pkg/pipeline"
	"github.com/hed1ad/edgeguard/pkg/store"
)

var (
	scoreModel     string
	scoreInput     string
	scoreCore      string
	scoreConfig    string
	scoreDB        string
	scoreThreshold float64
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score events against a trained model",
	Long: "Score encodes each event against the model's frozen schema and prints\n" +
		"its anomaly score. With --input it scores a recorded corpus once; with\n" +
		"--core (or a config file) it polls the event API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if scoreConfig != "" {
			loaded, err := config.Load(scoreConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if scoreCore != "" {
			cfg.CoreDataURL = scoreCore
		}
		if scoreDB != "" {
			cfg.StorePath = scoreDB
		}

		bundle, err := pipeline.LoadBundleFile(scoreModel)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		if scoreThreshold > 0 {
			setThreshold(bundle, scoreThreshold)
		} else if cfg.Threshold > 0 {
			setThreshold(bundle, cfg.Threshold)
		}
		scorer := pipeline.NewScorer(bundle)

		var results *store.Store
		if cfg.StorePath != "" {
			results, err = store.Open(cfg.StorePath)
			if err != nil {
				return err
			}
			defer results.Close()
		}

		if scoreInput != "" {
			return scoreFile(cmd, scorer, results)
		}
		return scoreLive(cmd, scorer, results, cfg)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreModel, "model", "", "Model artifact path (required)")
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "Recorded corpus to score (JSONL or CSV)")
	scoreCmd.Flags().StringVar(&scoreCore, "core", "", "Event API base URL to poll")
	scoreCmd.Flags().StringVar(&scoreConfig, "config", "", "YAML config file")
	scoreCmd.Flags().StringVar(&scoreDB, "db", "", "SQLite file to persist results")
	scoreCmd.Flags().Float64Var(&scoreThreshold, "threshold", 0, "Override the fitted anomaly threshold")
	scoreCmd.MarkFlagRequired("model")
}

// setThreshold applies an override when the detector supports it.
func setThreshold(bundle *pipeline.Bundle, t float64) {
	if d, ok := bundle.Detector.(interface{ SetThreshold(float64) }); ok {
		d.SetThreshold(t)
	}
}

func scoreFile(cmd *cobra.Command, scorer *pipeline.Scorer, results *store.Store) error {
	samples, err := readAll(scoreInput)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Key\tScore\tAnomaly\n")

	anomalies := 0
	for _, sample := range samples {
		score, err := scorer.Score(sample)
		if err != nil {
			return err
		}
		if score.IsAnomaly {
			anomalies++
		}
		fmt.Fprintf(w, "%s\t%.4f\t%v\n", sample.Key, score.Value, score.IsAnomaly)

		if results != nil {
			if err := results.Write(scorer.Result(sample, score)); err != nil {
				return err
			}
		}
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\nScored %d samples, %d anomalies\n", len(samples), anomalies)
	return nil
}

func scoreLive(cmd *cobra.Command, scorer *pipeline.Scorer, results *store.Store, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(cmd.ErrOrStderr(), "edgeguard: ", log.LstdFlags)

	client := coredata.NewClient(cfg.CoreDataURL,
		coredata.WithLimit(cfg.EventLimit),
		coredata.WithInterval(cfg.PollInterval.Std()),
		coredata.WithLogger(logger),
	)
	defer client.Close()

	ch, err := client.Stream(ctx)
	if err != nil {
		return err
	}

	logger.Printf("scoring events from %s every %s", cfg.CoreDataURL, cfg.PollInterval.Std())
	for sample := range ch {
		score, err := scorer.Score(sample)
		if err != nil {
			logger.Printf("score %s: %v", sample.Key, err)
			continue
		}

		logger.Printf("event=%s score=%.4f anomaly=%v", sample.Key, score.Value, score.IsAnomaly)

		if results != nil {
			if err := results.Write(scorer.Result(sample, score)); err != nil {
				logger.Printf("persist %s: %v", sample.Key, err)
			}
		}
	}
	return nil
}
