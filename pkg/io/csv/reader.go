// Package csv reads raw sample corpora from CSV files. With a header row,
// each record becomes a mapping payload keyed by column name; without one,
// each record becomes a sequence payload and extraction assigns positional
// item_<i> names. Cell values stay strings so that extraction decides
// numeric versus categorical per cell.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/hed1ad/edgeguard/pkg/features"
)

// Reader reads raw samples from CSV files.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	headers   []string
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates whether the CSV has a header row. Default true.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// NewReader opens a CSV corpus file.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
	}
	r.reader.FieldsPerRecord = -1

	for _, opt := range opts {
		opt(r)
	}

	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			file.Close()
			return nil, err
		}
		r.headers = headers
	}

	return r, nil
}

// Headers returns the column headers, if any.
func (r *Reader) Headers() []string {
	return r.headers
}

// Read returns one raw sample per CSV record. Unreadable records are
// skipped.
func (r *Reader) Read() ([]features.RawSample, error) {
	var samples []features.RawSample

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		samples = append(samples, r.sample(record))
	}

	return samples, nil
}

// Stream returns a channel of samples for live processing.
func (r *Reader) Stream(ctx context.Context) (<-chan features.RawSample, error) {
	out := make(chan features.RawSample, 100)

	go func() {
		defer close(out)
		for {
			record, err := r.reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				continue
			}

			select {
			case out <- r.sample(record):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

func (r *Reader) sample(record []string) features.RawSample {
	if r.hasHeader {
		payload := make(map[string]any, len(record))
		for i, cell := range record {
			if i >= len(r.headers) {
				break
			}
			payload[r.headers[i]] = cell
		}
		return features.RawSample{Type: "csv", Value: payload}
	}

	payload := make([]any, len(record))
	for i, cell := range record {
		payload[i] = cell
	}
	return features.RawSample{Type: "csv", Value: payload}
}
