package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hayashi-geek/urlpipe/core"
)

// sampleRate is the waveform sample rate fed to speech recognition:
// 16 kHz mono, 16-bit PCM.
const sampleRate = 16000

// defaultAudioTimeout bounds the whole download-decode-transcribe chain.
// Audio transcription dominates worst-case latency, so the bound is generous.
const defaultAudioTimeout = 5 * time.Minute

// Downloader fetches the best available audio track of a media URL and
// returns the path of the downloaded file. Implementations own the artifact;
// callers must remove it when done.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Transcriber runs speech recognition over a mono 16-bit PCM waveform.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// YtdlpDownloader shells out to yt-dlp to download and extract audio.
type YtdlpDownloader struct {
	YtdlpPath  string // defaults to "yt-dlp"
	FFmpegPath string // defaults to "ffmpeg"
}

// Download implements Downloader. The audio is extracted to an mp3 in the
// temp directory.
func (d *YtdlpDownloader) Download(ctx context.Context, url string) (string, error) {
	base := filepath.Join(os.TempDir(), uuid.NewString())

	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--ffmpeg-location", ffmpegPath(d.FFmpegPath),
		"--no-playlist",
		"--match-filter", "!is_live",
		"--output", base,
		url,
	}

	ytdlp := d.YtdlpPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}

	cmd := exec.CommandContext(ctx, ytdlp, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return base + ".mp3", nil
}

// DecodeWaveform converts an audio file to a mono 16-bit PCM waveform at the
// fixed sample rate by spawning ffmpeg.
func DecodeWaveform(ctx context.Context, ffmpeg, file string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath(ffmpeg),
		"-nostdin",
		"-threads", "0",
		"-i", file,
		"-f", "s16le",
		"-ac", "1",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// EncodeWAV wraps raw mono 16-bit PCM samples in a minimal RIFF header so
// the waveform can be posted to a transcription endpoint as a WAV file.
func EncodeWAV(pcm []byte) []byte {
	var buf bytes.Buffer

	byteRate := sampleRate * 2 // mono, 2 bytes per sample

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// WhisperClient posts waveforms to an OpenAI-compatible transcription
// endpoint (whisper.cpp server, or the hosted API).
type WhisperClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewWhisperClient creates a WhisperClient against baseURL, which must point
// at an /audio/transcriptions route. apiKey may be empty for local servers.
func NewWhisperClient(client *http.Client, baseURL, apiKey string) *WhisperClient {
	if client == nil {
		client = &http.Client{Timeout: defaultAudioTimeout}
	}
	return &WhisperClient{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   "whisper-1",
	}
}

// Transcribe implements Transcriber.
func (w *WhisperClient) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("writing waveform: %w", err)
	}
	if err := writer.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting waveform: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parsing transcription response: %w", err)
	}
	return parsed.Text, nil
}

// AudioStrategy downloads a media URL's audio track, decodes it, and runs
// speech recognition over the waveform. It is the most expensive strategy
// and is always ordered last among video strategies.
type AudioStrategy struct {
	downloader  Downloader
	transcriber Transcriber
	ffmpegPath  string
	timeout     time.Duration
	decode      func(ctx context.Context, ffmpeg, file string) ([]byte, error)
}

// NewAudio creates an AudioStrategy. A zero timeout uses the default bound.
func NewAudio(downloader Downloader, transcriber Transcriber, ffmpeg string, timeout time.Duration) *AudioStrategy {
	if timeout <= 0 {
		timeout = defaultAudioTimeout
	}
	return &AudioStrategy{
		downloader:  downloader,
		transcriber: transcriber,
		ffmpegPath:  ffmpeg,
		timeout:     timeout,
		decode:      DecodeWaveform,
	}
}

// Name implements core.Strategy.
func (s *AudioStrategy) Name() string { return "audio" }

// Load implements core.Strategy. The downloaded audio artifact is removed
// after transcription, success or failure.
func (s *AudioStrategy) Load(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	file, err := s.downloader.Download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("downloading audio: %w", err)
	}
	defer os.Remove(file)

	pcm, err := s.decode(ctx, s.ffmpegPath, file)
	if err != nil {
		return "", err
	}

	text, err := s.transcriber.Transcribe(ctx, EncodeWAV(pcm))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", core.ErrEmptyResult
	}
	return strings.TrimSpace(text), nil
}

func ffmpegPath(path string) string {
	if path == "" {
		return "ffmpeg"
	}
	return path
}
