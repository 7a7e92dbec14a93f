// Package pipeline wires feature extraction, schema discovery and the
// detector into the training and scoring paths. Both paths share one
// persisted Bundle, so training and inference agree bit-for-bit on what
// every vector column means.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/hed1ad/edgeguard/pkg/detectors"
	"github.com/hed1ad/edgeguard/pkg/detectors/iforest"
	"github.com/hed1ad/edgeguard/pkg/features"
	edgeio "github.com/hed1ad/edgeguard/pkg/io"
)

// ErrEmptySchema is returned when a training corpus yields no feature
// columns at all; fitting a model on zero-width vectors would be
// meaningless and must not proceed silently.
var ErrEmptySchema = errors.New("training corpus produced an empty schema")

// TrainOptions configures a training run.
type TrainOptions struct {
	// MaxCategories bounds one-hot columns per categorical field.
	MaxCategories int
	// Trees, SampleSize, Contamination and Seed configure the forest.
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
}

// DefaultTrainOptions returns the defaults used by the train command.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		MaxCategories: features.DefaultMaxCategories,
		Trees:         100,
		SampleSize:    256,
		Contamination: 0.01,
		Seed:          42,
	}
}

// Train extracts features from the corpus, freezes a schema, encodes the
// training matrix and fits an isolation forest. The returned bundle holds
// everything inference needs.
func Train(samples []features.RawSample, opts TrainOptions) (*Bundle, error) {
	if len(samples) == 0 {
		return nil, errors.New("empty training corpus")
	}

	corpus := make([]features.FieldMap, len(samples))
	for i, sample := range samples {
		corpus[i] = features.Extract(sample)
	}

	schema := features.BuildSchema(corpus, opts.MaxCategories)
	if schema.Empty() {
		return nil, ErrEmptySchema
	}

	matrix := features.EncodeMatrix(corpus, schema)

	detector := iforest.New(
		iforest.WithTrees(opts.Trees),
		iforest.WithSampleSize(opts.SampleSize),
		iforest.WithContamination(opts.Contamination),
		iforest.WithSeed(opts.Seed),
	)
	if err := detector.Fit(matrix); err != nil {
		return nil, fmt.Errorf("fit detector: %w", err)
	}

	return &Bundle{Schema: schema, Detector: detector}, nil
}

// Scorer scores raw samples against a trained bundle.
type Scorer struct {
	bundle *Bundle
}

// NewScorer wraps a bundle for per-sample scoring.
func NewScorer(bundle *Bundle) *Scorer {
	return &Scorer{bundle: bundle}
}

// Schema returns the frozen schema scoring encodes against.
func (s *Scorer) Schema() *features.Schema {
	return s.bundle.Schema
}

// Score extracts, encodes and scores one raw sample. Malformed payloads
// degrade to an all-zero vector and still produce a score.
func (s *Scorer) Score(sample features.RawSample) (detectors.Score, error) {
	fields := features.Extract(sample)
	vec := features.Encode(fields, s.bundle.Schema)

	value, err := s.bundle.Detector.PredictOne(vec)
	if err != nil {
		return detectors.Score{}, err
	}

	return detectors.Score{
		Value:     value,
		IsAnomaly: value >= s.bundle.Detector.Threshold(),
		Features:  vec,
		Metadata: map[string]any{
			"key":  sample.Key,
			"type": sample.Type,
		},
	}, nil
}

// Result converts a score into a reportable result record.
func (s *Scorer) Result(sample features.RawSample, score detectors.Score) edgeio.Result {
	return edgeio.Result{
		ObservedAt: time.Now().UTC(),
		Source:     sample.Type,
		Device:     sample.Key,
		Score:      score.Value,
		IsAnomaly:  score.IsAnomaly,
		Features:   score.Features,
	}
}
