package media

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WriteListRemove(t *testing.T) {
	s, err := New(t.TempDir(), "/media")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Write(ctx, DirOutputs, "labels.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "/media/data_output/labels.pdf", url)

	data, err := os.ReadFile(filepath.Join(s.Root(), "data_output", "labels.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	second, err := s.Write(ctx, DirOutputs, "labels.pdf", []byte("%PDF-2"))
	require.NoError(t, err)
	assert.NotEqual(t, url, second)
	assert.True(t, strings.HasPrefix(second, "/media/data_output/labels_"))
	assert.True(t, strings.HasSuffix(second, ".pdf"))

	assets, err := s.List(ctx, DirOutputs)
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	require.NoError(t, s.Remove(ctx, url))
	require.NoError(t, s.Remove(ctx, url), "removing twice is not an error")

	assets, err = s.List(ctx, DirOutputs)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestStore_RejectsEscapes(t *testing.T) {
	s, err := New(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Write(ctx, "../../etc", "../passwd", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/media/etc/passwd", url)
	_, statErr := os.Stat(filepath.Join(s.Root(), "etc", "passwd"))
	assert.NoError(t, statErr, "dir is clamped inside the root")

	assert.Error(t, s.Remove(ctx, "/static/x"))
}

func TestStore_ListMissingDir(t *testing.T) {
	s, err := New(t.TempDir(), "/media/")
	require.NoError(t, err)
	assets, err := s.List(context.Background(), DirAssets)
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestStore_ConcurrentWritesKeepEveryFile(t *testing.T) {
	s, err := New(t.TempDir(), "/media/")
	require.NoError(t, err)

	const writers = 50
	urls := make([]string, writers)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			urls[i], errs[i] = s.Write(context.Background(), DirOutputs, "report.pdf", []byte(strconv.Itoa(i)))
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, writers)
	for i := range writers {
		require.NoError(t, errs[i])
		assert.False(t, seen[urls[i]], "duplicate url %s", urls[i])
		seen[urls[i]] = true

		rel := strings.TrimPrefix(urls[i], "/media/")
		got, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), string(got))
	}
}
