package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"
)

const manifestFilename = "manifest.json"

// Manifest describes one dated mirror round.
type Manifest struct {
	ID         string        `json:"id"`
	MirroredAt time.Time     `json:"mirrored_at"`
	Sources    []SourceEntry `json:"sources"`
}

type SourceEntry struct {
	Name        string `json:"name"`
	IRI         string `json:"iri"`
	Format      string `json:"format"`
	File        string `json:"file"`
	SizeBytes   int64  `json:"size_bytes"`
	OntologyIRI string `json:"ontology_iri,omitempty"`
	Classes     int    `json:"classes,omitempty"`
}

func (s *Supervisor) writeManifest(ctx context.Context, mirrorID string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := s.stor.Put(ctx, path.Join(mirrorID, manifestFilename), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload manifest: %w", err)
	}
	return nil
}

// ReadManifest fetches the manifest of a dated mirror.
func (s *Supervisor) ReadManifest(ctx context.Context, mirrorID string) (*Manifest, error) {
	rdr, err := s.stor.Get(ctx, path.Join(mirrorID, manifestFilename))
	if err != nil {
		return nil, fmt.Errorf("get manifest for %s: %w", mirrorID, err)
	}
	defer rdr.Close()

	var m Manifest
	if err := json.NewDecoder(rdr).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest for %s: %w", mirrorID, err)
	}
	return &m, nil
}
