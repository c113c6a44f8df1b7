package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aws-bulk-1.json"), []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aws-bulk-2.json"), []byte(`{"b":2}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gcp-catalog-1.json"), []byte(`{}`), 0o644))

	source := NewDirSource(dir, "aws-bulk-*.json")

	docs, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []byte(`{"a":1}`), docs[0].Body)

	require.NoError(t, source.Done(context.Background(), docs[0].Name))
	_, err = os.Stat(docs[0].Name)
	assert.True(t, os.IsNotExist(err))

	// the other vendor's file is untouched
	_, err = os.Stat(filepath.Join(dir, "gcp-catalog-1.json"))
	assert.NoError(t, err)
}
