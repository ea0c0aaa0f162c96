package snapshot_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayashi-geek/urlpipe/core"
	"github.com/hayashi-geek/urlpipe/core/htmlconv"
	"github.com/hayashi-geek/urlpipe/core/snapshot"
)

type stubSnapshotter struct {
	html string
	err  error
	path string
}

func (s *stubSnapshotter) Snapshot(ctx context.Context, url string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.path, os.WriteFile(s.path, []byte(s.html), 0o644)
}

func TestSnapshotStrategy(t *testing.T) {
	t.Parallel()

	t.Run("converts the rendered file and removes it", func(t *testing.T) {
		t.Parallel()

		stub := &stubSnapshotter{
			html: `<html><body><article><p>rendered content</p></article></body></html>`,
			path: filepath.Join(t.TempDir(), "snap.html"),
		}
		strategy := snapshot.New(stub, htmlconv.New(htmlconv.ModeMarkdown), 0)

		text, err := strategy.Load(context.Background(), "https://example.com")
		require.NoError(t, err)
		assert.Contains(t, text, "rendered content")

		_, err = os.Stat(stub.path)
		assert.True(t, os.IsNotExist(err), "snapshot file should be removed")
	})

	t.Run("snapshotter failure propagates", func(t *testing.T) {
		t.Parallel()

		stub := &stubSnapshotter{err: fmt.Errorf("browser crashed")}
		strategy := snapshot.New(stub, htmlconv.New(htmlconv.ModeMarkdown), 0)

		_, err := strategy.Load(context.Background(), "https://example.com")
		assert.ErrorContains(t, err, "browser crashed")
	})

	t.Run("blank render is an empty result", func(t *testing.T) {
		t.Parallel()

		stub := &stubSnapshotter{
			html: `<html><body></body></html>`,
			path: filepath.Join(t.TempDir(), "snap.html"),
		}
		strategy := snapshot.New(stub, htmlconv.New(htmlconv.ModeMarkdown), 0)

		_, err := strategy.Load(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, core.ErrEmptyResult)
	})
}

func TestSingleFileMissingCookiesFile(t *testing.T) {
	t.Parallel()

	s := &snapshot.SingleFile{CookiesFile: "/nonexistent/cookies.txt"}
	_, err := s.Snapshot(context.Background(), "https://example.com")
	assert.ErrorContains(t, err, "cookies file not found")
}
