package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hed1ad/edgeguard/pkg/detectors"
	"github.com/hed1ad/edgeguard/pkg/detectors/iforest"
	"github.com/hed1ad/edgeguard/pkg/features"
)

// BundleVersion is the persistence format version for trained bundles.
const BundleVersion = 1

// algorithmIForest names the only detector algorithm currently persisted.
const algorithmIForest = "iforest"

// Bundle pairs a frozen schema with the detector trained against it. The
// two are persisted together so inference can never load a model without
// the exact column layout it was trained on.
type Bundle struct {
	Schema   *features.Schema
	Detector detectors.Detector
}

// envelope is the on-disk JSON form of a bundle.
type envelope struct {
	Version   int              `json:"version"`
	Algorithm string           `json:"algorithm"`
	Schema    *features.Schema `json:"schema"`
	Model     []byte           `json:"model"`
}

// Save serializes the bundle: schema in its documented JSON form, the
// model as its own serialized bytes.
func (b *Bundle) Save() ([]byte, error) {
	model, err := b.Detector.Save()
	if err != nil {
		return nil, fmt.Errorf("serialize model: %w", err)
	}

	return json.Marshal(envelope{
		Version:   BundleVersion,
		Algorithm: algorithmIForest,
		Schema:    b.Schema,
		Model:     model,
	})
}

// LoadBundle deserializes a bundle, verifying versions and that the model
// width matches the schema width. A mismatch means the artifact was
// assembled from a different training run and must not score anything.
func LoadBundle(data []byte) (*Bundle, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if env.Version != BundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", env.Version)
	}
	if env.Algorithm != algorithmIForest {
		return nil, fmt.Errorf("unsupported algorithm %q", env.Algorithm)
	}

	schemaJSON, err := json.Marshal(env.Schema)
	if err != nil {
		return nil, err
	}
	schema, err := features.ParseSchema(schemaJSON)
	if err != nil {
		return nil, err
	}

	detector := iforest.New()
	if err := detector.Load(env.Model); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if detector.Width() != schema.Width() {
		return nil, fmt.Errorf("model width %d does not match schema width %d", detector.Width(), schema.Width())
	}

	return &Bundle{Schema: schema, Detector: detector}, nil
}

// SaveFile writes the bundle to path.
func (b *Bundle) SaveFile(path string) error {
	data, err := b.Save()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadBundleFile reads a bundle from path.
func LoadBundleFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBundle(data)
}
