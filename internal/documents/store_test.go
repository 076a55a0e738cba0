package documents

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cashora/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Save(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc, err := s.Save("../../receipt.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(doc.Name, ".png"))
	assert.Equal(t, "receipt.PNG", doc.Original)
	assert.Equal(t, int64(9), doc.Size)

	data, err := os.ReadFile(filepath.Join(s.Dir(), doc.Name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestStore_RejectsUnknownExtension(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("script.sh", "text/plain", strings.NewReader("#!/bin/sh"))
	assert.ErrorIs(t, err, models.ErrInvalidDocument)
}

func TestStore_RejectsOversized(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	_, err = s.Save("big.pdf", "application/pdf", bytes.NewReader(make([]byte, MaxDocumentSize+1)))
	assert.ErrorIs(t, err, models.ErrInvalidDocument)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "partial file is removed")
}

func TestStore_Remove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc, err := s.Save("id.pdf", "application/pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(doc.Name))
	_, err = os.Stat(filepath.Join(s.Dir(), doc.Name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(doc.Name), "already gone")
	assert.ErrorIs(t, s.Remove("../etc/passwd"), models.ErrInvalidDocument)
}
