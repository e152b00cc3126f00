package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CodeMapFile, `{"a01": "First"}`)

	s, err := NewStore(Paths{DataDir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Current().Codes.Len())

	reloaded := 0
	s.OnReload(func(*Data) { reloaded++ })

	writeFile(t, dir, CodeMapFile, `{"a01": "First", "a02": "Second"}`)
	require.NoError(t, s.Reload())
	assert.Equal(t, 2, s.Current().Codes.Len())
	assert.Equal(t, 1, reloaded)

	writeFile(t, dir, CodeMapFile, `{"a01": `)
	require.Error(t, s.Reload())
	assert.Equal(t, 2, s.Current().Codes.Len(), "failed reload keeps previous snapshot")
}

func TestStoreWatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CodeMapFile, `{"a01": "First"}`)

	s, err := NewStore(Paths{DataDir: dir}, nil)
	require.NoError(t, err)

	reloaded := make(chan struct{}, 4)
	s.OnReload(func(*Data) { reloaded <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, 20*time.Millisecond) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, CodeMapFile, `{"a01": "First", "a02": "Second"}`)

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("store was not reloaded after a file change")
	}
	assert.Equal(t, 2, s.Current().Codes.Len())

	cancel()
	require.NoError(t, <-done)
}

func TestStoreWatchNestedAssets(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	writeFile(t, images, "a01/cover.png", "png")

	s, err := NewStore(Paths{DataDir: filepath.Join(dir, "data"), ImageDir: images}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a01/cover.png", s.Current().Assets.Image("a01/cover.png", ""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, 20*time.Millisecond) }()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, images, "a01/detail.png", "png")

	require.Eventually(t, func() bool {
		return s.Current().Assets.Image("a01/detail.png", "") != ""
	}, 5*time.Second, 20*time.Millisecond, "a file in an existing subdirectory triggers a reload")

	// A directory created after the watch started is picked up too.
	require.NoError(t, os.MkdirAll(filepath.Join(images, "b02"), 0o750))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, images, "b02/cover.png", "png")

	require.Eventually(t, func() bool {
		return s.Current().Assets.Image("b02/cover.png", "") != ""
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
