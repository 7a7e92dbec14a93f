// Package io provides input/output contracts for sample ingestion and
// result reporting.
package io

import (
	"context"
	"time"

	"github.com/hed1ad/edgeguard/pkg/features"
)

// SampleReader reads raw samples from a source (JSONL corpus files, a
// polled event API, live packet capture).
type SampleReader interface {
	// Read returns the complete set of samples the source holds.
	Read() ([]features.RawSample, error)

	// Stream returns a channel of samples for live processing.
	Stream(ctx context.Context) (<-chan features.RawSample, error)

	// Close releases resources.
	Close() error
}

// Writer is the interface for writing scoring results.
type Writer interface {
	// Write outputs a single result.
	Write(result Result) error

	// Close releases resources.
	Close() error
}

// Result is one scored sample.
type Result struct {
	ID         string    `json:"id"`
	ObservedAt time.Time `json:"observed_at"`
	Source     string    `json:"source,omitempty"`
	Device     string    `json:"device,omitempty"`
	Score      float64   `json:"score"`
	IsAnomaly  bool      `json:"is_anomaly"`
	Features   []float64 `json:"features,omitempty"`
}
