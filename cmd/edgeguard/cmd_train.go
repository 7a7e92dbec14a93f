package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hed1ad/edgeguard/pkg/features"
	edgeio "github.com/hed1ad/edgeguard/pkg/io"
	csvreader "github.com/hed1ad/edgeguard/pkg/io/csv"
	"github.com/hed1ad/edgeguard/pkg/io/jsonl"
	"github.com/hed1ad/edgeguard/pkg/pipeline"
)

var (
	trainInput         string
	trainOut           string
	trainMaxCategories int
	trainTrees         int
	trainSampleSize    int
	trainContamination float64
	trainSeed          int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model from a sampled corpus",
	Long: "Train extracts features from every sample in the corpus, freezes the\n" +
		"feature schema, fits an isolation forest and writes both to one model\n" +
		"artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, err := readAll(trainInput)
		if err != nil {
			return err
		}

		bundle, err := pipeline.Train(samples, pipeline.TrainOptions{
			MaxCategories: trainMaxCategories,
			Trees:         trainTrees,
			SampleSize:    trainSampleSize,
			Contamination: trainContamination,
			Seed:          trainSeed,
		})
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}

		if err := bundle.SaveFile(trainOut); err != nil {
			return fmt.Errorf("write model: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Trained on %d samples, %d feature columns\n", len(samples), bundle.Schema.Width())
		fmt.Fprintf(cmd.OutOrStdout(), "Model: %s\n", trainOut)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainInput, "input", "", "Corpus file, JSONL or CSV (required)")
	trainCmd.Flags().StringVar(&trainOut, "out", "model.json", "Output model artifact path")
	trainCmd.Flags().IntVar(&trainMaxCategories, "max-categories", features.DefaultMaxCategories, "Max one-hot categories per field")
	trainCmd.Flags().IntVar(&trainTrees, "trees", 100, "Number of isolation trees")
	trainCmd.Flags().IntVar(&trainSampleSize, "sample-size", 256, "Subsample size per tree")
	trainCmd.Flags().Float64Var(&trainContamination, "contamination", 0.01, "Expected anomaly proportion")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "Random seed")
	trainCmd.MarkFlagRequired("input")
}

// readAll opens the corpus file by extension and drains it.
func readAll(path string) ([]features.RawSample, error) {
	var (
		reader edgeio.SampleReader
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		reader, err = csvreader.NewReader(path)
	default:
		reader, err = jsonl.NewReader(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer reader.Close()

	samples, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return samples, nil
}
