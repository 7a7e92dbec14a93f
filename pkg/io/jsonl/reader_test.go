package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = `{"key": "edgex:reading:1", "type": "hash", "value": {"temp": "21.5", "mode": "auto"}}
{"key": "edgex:reading:2", "type": "string", "value": "{\"temp\": 19.0}"}
not a json line
{"key": "edgex:reading:3", "type": "list", "value": [1, 2, 3]}

{"key": "edgex:reading:4"}
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0o644))
	return path
}

func TestRead(t *testing.T) {
	r, err := NewReader(writeCorpus(t))
	require.NoError(t, err)
	defer r.Close()

	samples, err := r.Read()
	require.NoError(t, err)

	// Malformed and blank lines are skipped, everything else kept.
	require.Len(t, samples, 4)
	assert.Equal(t, "edgex:reading:1", samples[0].Key)
	assert.Equal(t, "hash", samples[0].Type)
	assert.Equal(t, "{\"temp\": 19.0}", samples[1].Value)
	assert.Nil(t, samples[3].Value)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	r, err := NewReader(writeCorpus(t))
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := r.Stream(ctx)
	require.NoError(t, err)

	var keys []string
	for sample := range ch {
		keys = append(keys, sample.Key)
	}

	assert.Equal(t, []string{"edgex:reading:1", "edgex:reading:2", "edgex:reading:3", "edgex:reading:4"}, keys)
}

func TestStreamCancel(t *testing.T) {
	r, err := NewReader(writeCorpus(t))
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, err := r.Stream(ctx)
	require.NoError(t, err)

	// Channel must close promptly after cancellation.
	count := 0
	for range ch {
		count++
	}
	assert.LessOrEqual(t, count, 4)
}
