package media

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayashi-geek/urlpipe/core"
)

func TestEncodeWAV(t *testing.T) {
	t.Parallel()

	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAV(pcm)

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "channels")
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]), "sample rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestWhisperClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "audio.wav", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"text": "recognized speech"})
	}))
	defer srv.Close()

	client := NewWhisperClient(srv.Client(), srv.URL, "test-key")
	text, err := client.Transcribe(context.Background(), EncodeWAV([]byte{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, "recognized speech", text)
}

func TestWhisperClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewWhisperClient(srv.Client(), srv.URL, "")
	_, err := client.Transcribe(context.Background(), nil)
	assert.ErrorContains(t, err, "429")
}

type stubDownloader struct {
	path string
	err  error
}

func (d *stubDownloader) Download(ctx context.Context, url string) (string, error) {
	return d.path, d.err
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	return s.text, s.err
}

func TestAudioStrategyCleansUpArtifact(t *testing.T) {
	t.Parallel()

	audioFile := filepath.Join(t.TempDir(), "download.mp3")
	require.NoError(t, os.WriteFile(audioFile, []byte("fake audio"), 0o644))

	strategy := NewAudio(
		&stubDownloader{path: audioFile},
		&stubTranscriber{text: " some words "},
		"ffmpeg", 0,
	)
	strategy.decode = func(ctx context.Context, ffmpeg, file string) ([]byte, error) {
		return []byte{0, 0, 0, 0}, nil
	}

	text, err := strategy.Load(context.Background(), "https://www.instagram.com/reel/xyz")
	require.NoError(t, err)
	assert.Equal(t, "some words", text)

	_, err = os.Stat(audioFile)
	assert.True(t, os.IsNotExist(err), "downloaded artifact should be removed")
}

func TestAudioStrategyCleansUpOnFailure(t *testing.T) {
	t.Parallel()

	audioFile := filepath.Join(t.TempDir(), "download.mp3")
	require.NoError(t, os.WriteFile(audioFile, []byte("fake audio"), 0o644))

	strategy := NewAudio(
		&stubDownloader{path: audioFile},
		&stubTranscriber{err: fmt.Errorf("model unavailable")},
		"ffmpeg", 0,
	)
	strategy.decode = func(ctx context.Context, ffmpeg, file string) ([]byte, error) {
		return []byte{0, 0}, nil
	}

	_, err := strategy.Load(context.Background(), "https://www.instagram.com/reel/xyz")
	assert.Error(t, err)

	_, err = os.Stat(audioFile)
	assert.True(t, os.IsNotExist(err), "artifact should be removed on failure too")
}

func TestAudioStrategyEmptyTranscript(t *testing.T) {
	t.Parallel()

	audioFile := filepath.Join(t.TempDir(), "download.mp3")
	require.NoError(t, os.WriteFile(audioFile, []byte("fake audio"), 0o644))

	strategy := NewAudio(
		&stubDownloader{path: audioFile},
		&stubTranscriber{text: "   "},
		"", 0,
	)
	strategy.decode = func(ctx context.Context, ffmpeg, file string) ([]byte, error) {
		return []byte{0, 0}, nil
	}

	_, err := strategy.Load(context.Background(), "https://www.instagram.com/reel/xyz")
	assert.ErrorIs(t, err, core.ErrEmptyResult)
}
