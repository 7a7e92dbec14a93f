// Package jsonl reads raw sample corpora from JSON-lines files, one
// {"key","type","value"} record per line, as produced by the sampler.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/hed1ad/edgeguard/pkg/features"
)

// Reader reads raw samples from a JSONL file.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// maxLineBytes bounds a single record; sampler records stay far below this.
const maxLineBytes = 1 << 20

// NewReader opens a JSONL corpus file.
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &Reader{
		file:    file,
		scanner: scanner,
	}, nil
}

// Read returns all samples in the file. Malformed lines are skipped.
func (r *Reader) Read() ([]features.RawSample, error) {
	var samples []features.RawSample

	for r.scanner.Scan() {
		sample, ok := parseLine(r.scanner.Bytes())
		if !ok {
			continue
		}
		samples = append(samples, sample)
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Stream returns a channel of samples for pipeline-style processing.
func (r *Reader) Stream(ctx context.Context) (<-chan features.RawSample, error) {
	out := make(chan features.RawSample, 100)

	go func() {
		defer close(out)
		for r.scanner.Scan() {
			sample, ok := parseLine(r.scanner.Bytes())
			if !ok {
				continue
			}

			select {
			case out <- sample:
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

func parseLine(line []byte) (features.RawSample, bool) {
	if len(line) == 0 {
		return features.RawSample{}, false
	}
	var sample features.RawSample
	if err := json.Unmarshal(line, &sample); err != nil {
		return features.RawSample{}, false
	}
	return sample, true
}
