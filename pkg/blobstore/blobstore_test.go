package blobstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pattern-sphere-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	gifBytes = append([]byte("GIF89a"), make([]byte, 32)...)
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "images")
	return New(Config{
		Root:         root,
		Depth:        1,
		MaxBytes:     1024,
		AllowedTypes: []string{"image/gif", "image/jpeg", "image/png"},
		PublicPrefix: "/api/image/v1/",
	}), root
}

func TestCheckAndStoreDedupsByContent(t *testing.T) {
	store, root := newTestStore(t)

	first, err := store.CheckAndStore(pngBytes, "cat.png")
	require.NoError(t, err)
	assert.True(t, first.Stored)
	assert.Equal(t, Hash(pngBytes), first.Hash)
	assert.Equal(t, "cat.png", first.Filename)
	assert.Equal(t, "image/png", first.MimeType)

	second, err := store.CheckAndStore(pngBytes, "other-name.png")
	require.NoError(t, err)
	assert.False(t, second.Stored)
	assert.Equal(t, first.Hash, second.Hash)

	entries, err := os.ReadDir(filepath.Join(root, first.Hash[:1]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCheckAndStoreRejects(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "oversized", data: append([]byte("GIF89a"), make([]byte, 2048)...)},
		{name: "html disguised as image", data: []byte("<html><body>hi</body></html>")},
		{name: "plain text", data: []byte("just some words")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := store.CheckAndStore(tt.data, "photo.png")
			assert.Nil(t, upload)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
		})
	}
}

func TestPathForIsDeterministic(t *testing.T) {
	store, root := newTestStore(t)
	hash := Hash(gifBytes)

	p1, err := store.PathFor(hash)
	require.NoError(t, err)
	p2, err := store.PathFor(hash)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, filepath.Join(root, hash[:1], hash), p1)

	info, err := os.Stat(filepath.Dir(p1))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(p1)
	assert.True(t, os.IsNotExist(err), "PathFor must not create the blob")
}

func TestPathForRejectsMalformedHash(t *testing.T) {
	store, _ := newTestStore(t)

	for _, h := range []string{"", "../../etc/passwd", strings.Repeat("z", 40), strings.Repeat("A", 40)} {
		_, err := store.PathFor(h)
		assert.Error(t, err, h)
	}
}

func TestDeleteAndOpen(t *testing.T) {
	store, _ := newTestStore(t)

	upload, err := store.CheckAndStore(gifBytes, "anim.gif")
	require.NoError(t, err)
	assert.True(t, store.Exists(upload.Hash))

	rc, mtype, err := store.Open(upload.Hash)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, gifBytes, body)
	assert.Equal(t, "image/gif", mtype)

	assert.True(t, store.Delete(upload.Hash))
	assert.False(t, store.Exists(upload.Hash))
	assert.False(t, store.Delete(upload.Hash))

	_, _, err = store.Open(upload.Hash)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestPublicURL(t *testing.T) {
	store, _ := newTestStore(t)
	hash := Hash(pngBytes)
	assert.Equal(t, "/api/image/v1/"+hash, store.PublicURL(hash))
}
