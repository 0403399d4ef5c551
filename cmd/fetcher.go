package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dappstate/internal/store"
)

// fileFetcher reads the authoritative record set from a JSON file. It stands
// in for the chain-backed collaborator in local runs; the poller does not
// care where records come from.
type fileFetcher struct {
	path string
}

type fileRecord struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

func (f *fileFetcher) Fetch(_ context.Context) ([]store.Record, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var frs []fileRecord
	if err := json.Unmarshal(raw, &frs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}

	out := make([]store.Record, 0, len(frs))
	for _, fr := range frs {
		out = append(out, store.Record{Key: fr.Key, Fields: fr.Fields})
	}
	return out, nil
}
