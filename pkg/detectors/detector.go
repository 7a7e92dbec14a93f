// Package detectors provides unsupervised anomaly detection over encoded
// feature vectors.
package detectors

import "context"

// Detector is the common interface for anomaly detection algorithms.
//
// A detector is bound to the feature width it was trained on: feeding it a
// vector of any other length is a contract violation (the caller encoded
// against the wrong schema) and returns an error rather than a score.
type Detector interface {
	// Fit trains the detector. data is a 2D slice where each row is one
	// encoded sample and each column is one schema column.
	Fit(data [][]float64) error

	// Predict returns anomaly scores in [0, 1] for the given samples;
	// higher values indicate anomalies.
	Predict(data [][]float64) ([]float64, error)

	// PredictOne returns the anomaly score for a single sample.
	PredictOne(sample []float64) (float64, error)

	// Width returns the feature width the detector was trained on,
	// or 0 before training.
	Width() int

	// Threshold returns the score threshold for classifying anomalies.
	Threshold() float64

	// Save serializes the trained model to bytes.
	Save() ([]byte, error)

	// Load deserializes a trained model from bytes.
	Load(data []byte) error
}

// StreamDetector extends Detector with streaming capabilities.
type StreamDetector interface {
	Detector

	// PredictStream scores samples from a channel until it closes or the
	// context is cancelled.
	PredictStream(ctx context.Context, input <-chan []float64, output chan<- Score) error
}

// Score is one anomaly detection result.
type Score struct {
	// Value is the anomaly score in [0, 1].
	Value float64
	// IsAnomaly indicates the score exceeds the detector threshold.
	IsAnomaly bool
	// Features is the encoded input vector.
	Features []float64
	// Metadata carries source information (event id, device, ...).
	Metadata map[string]any
}
