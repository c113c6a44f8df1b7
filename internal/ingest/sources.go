package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// RawDocument is one fetched vendor document, opaque to the orchestrator.
type RawDocument struct {
	Name string
	Body []byte
}

// DocumentSource feeds raw documents to a scraper. Done acknowledges one
// document after it has been persisted, letting the source retire it.
type DocumentSource interface {
	Fetch(ctx context.Context) ([]RawDocument, error)
	Done(ctx context.Context, name string) error
}

// DirSource reads documents staged on disk by the vendor fetchers and
// removes each file once its contents are committed.
type DirSource struct {
	dir     string
	pattern string
}

// NewDirSource creates a DirSource matching pattern (a filepath glob)
// under dir.
func NewDirSource(dir, pattern string) *DirSource {
	return &DirSource{dir: dir, pattern: pattern}
}

func (s *DirSource) Fetch(_ context.Context) ([]RawDocument, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", s.pattern, err)
	}
	var docs []RawDocument
	for _, path := range matches {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, RawDocument{Name: path, Body: body})
	}
	return docs, nil
}

func (s *DirSource) Done(_ context.Context, name string) error {
	return os.Remove(name)
}

// StaticSource serves fixed in-memory documents and records which were
// acknowledged. Test use.
type StaticSource struct {
	Docs     []RawDocument
	Acked    []string
	FetchErr error
}

func (s *StaticSource) Fetch(context.Context) ([]RawDocument, error) {
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	return s.Docs, nil
}

func (s *StaticSource) Done(_ context.Context, name string) error {
	s.Acked = append(s.Acked, name)
	return nil
}
