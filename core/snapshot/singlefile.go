package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SingleFile drives the external single-file executable, which renders the
// page in a headless browser and saves the complete DOM to one HTML file.
type SingleFile struct {
	// Path locates the single-file executable. Empty means "single-file"
	// on PATH.
	Path string

	// CookiesFile optionally points at a browser cookies file for pages
	// behind authentication. The file must exist if set.
	CookiesFile string
}

// Snapshot implements Snapshotter.
func (s *SingleFile) Snapshot(ctx context.Context, url string) (string, error) {
	binary := s.Path
	if binary == "" {
		binary = "single-file"
	}

	output := filepath.Join(os.TempDir(), uuid.NewString()+".html")

	args := []string{}
	if s.CookiesFile != "" {
		if _, err := os.Stat(s.CookiesFile); err != nil {
			return "", fmt.Errorf("cookies file not found: %s", s.CookiesFile)
		}
		args = append(args, "--browser-cookies-file", s.CookiesFile)
	}
	args = append(args,
		"--filename-conflict-action", "overwrite",
		"--browser-headless", "true",
		url,
		output,
	)

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("single-file failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("single-file produced no output for %s", url)
	}
	return output, nil
}
